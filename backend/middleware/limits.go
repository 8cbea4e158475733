package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func rateLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, message)
		},
	})
}

// GlobalRateLimiter applies to every API route.
func GlobalRateLimiter() fiber.Handler {
	return rateLimiter(300, time.Minute, "Too many requests, try again later")
}

func LoginRateLimiter() fiber.Handler {
	return rateLimiter(10, time.Minute, "Too many login attempts, try again in a minute")
}

func RegisterRateLimiter() fiber.Handler {
	return rateLimiter(5, 5*time.Minute, "Too many registrations, try again in a few minutes")
}

func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
	})
}

// CorsMiddleware allows credentialed requests from the configured origins,
// which is what the cookie based session needs.
func CorsMiddleware(allowedOrigins string) fiber.Handler {
	origins := make([]string, 0)
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		// fiber refuses a wildcard origin together with credentials
		origins = append(origins, "http://localhost:3000")
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: true,
	})
}
