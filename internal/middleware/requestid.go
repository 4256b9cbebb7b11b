package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request identifier used in logs.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a stable identifier, honoring one the
// caller already sent.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Locals(RequestIDHeader, id)
		return c.Next()
	}
}
