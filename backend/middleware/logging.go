package middleware

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID propagates an incoming X-Request-ID or assigns a new one.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not written the response yet
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		method := c.Method()

		var statusColor, methodColor, resetColor string
		if logger.Flags()&log.Lmsgprefix == 0 {
			statusColor, methodColor, resetColor = getStatusColor(status), getMethodColor(method), "\033[0m"
		}

		requestID, _ := c.Locals("request_id").(string)
		logger.Printf("%s %s%s%s %s %s%d%s %s rid=%s",
			c.IP(),
			methodColor, method, resetColor,
			c.Path(),
			statusColor, status, resetColor,
			time.Since(start),
			requestID,
		)
		return err
	}
}

func getStatusColor(status int) string {
	switch {
	case status >= 500:
		return "\033[31m"
	case status >= 400:
		return "\033[33m"
	case status >= 300:
		return "\033[36m"
	case status >= 200:
		return "\033[32m"
	default:
		return "\033[37m"
	}
}

func getMethodColor(method string) string {
	switch method {
	case fiber.MethodGet:
		return "\033[34m"
	case fiber.MethodPost:
		return "\033[33m"
	case fiber.MethodPut:
		return "\033[36m"
	case fiber.MethodDelete:
		return "\033[31m"
	case fiber.MethodPatch:
		return "\033[32m"
	default:
		return "\033[37m"
	}
}
