package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit creates a per-student rate limiter. Unauthenticated requests are
// keyed by client IP instead.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if studentID, ok := StudentID(c); ok && studentID > 0 {
				return fmt.Sprintf("%s:%d", identifier, studentID)
			}
			return fmt.Sprintf("%s:%s", identifier, c.IP())
		},
	})
}
