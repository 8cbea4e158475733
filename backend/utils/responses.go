package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Success wraps data in the common success envelope.
func Success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	response := SuccessResponse{
		Success: true,
		Data:    data,
	}
	if len(meta) > 0 {
		response.Meta = meta[0]
	}
	return c.Status(status).JSON(response)
}

// Error writes the common error envelope.
func Error(c *fiber.Ctx, status int, message string, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: message,
	}
	if len(details) > 0 {
		response.Details = details[0]
	}
	return c.Status(status).JSON(response)
}

// ValidationError answers 400 with a field -> rule map.
func ValidationError(c *fiber.Ctx, fields map[string]string) error {
	return Error(c, fiber.StatusBadRequest, "Validation failed", fields)
}

func Created(c *fiber.Ctx, data fiber.Map) error {
	data["success"] = true
	return c.Status(fiber.StatusCreated).JSON(data)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// ErrorHandler renders errors returned from handlers and middleware.
// Anything that is not a *fiber.Error is reported as a generic 500.
func ErrorHandler(logger interface{ Printf(string, ...interface{}) }) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return Error(c, fe.Code, fe.Message)
		}
		var fields FieldErrors
		if errors.As(err, &fields) {
			return ValidationError(c, fields)
		}
		logger.Printf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return Error(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
