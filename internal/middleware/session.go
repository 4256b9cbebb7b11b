package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/airbounty/airbounty/internal/identity"
	"github.com/airbounty/airbounty/internal/session"
)

// IdentityLocal is the fiber locals key holding the authenticated identity.
const IdentityLocal = "identity"

// SessionAuth validates the bearer session token and places the resolved
// identity into request locals.
func SessionAuth(sessions *session.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])

		id, err := sessions.Identify(token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid session token")
		}

		c.Locals(IdentityLocal, id)
		return c.Next()
	}
}

// CurrentIdentity pulls the authenticated identity from locals.
func CurrentIdentity(c *fiber.Ctx) (identity.Identity, bool) {
	id, ok := c.Locals(IdentityLocal).(identity.Identity)
	return id, ok
}
