package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/billing_api/internal/utils"
)

const AdminCookie = "admin_token"

// RequireAdmin accepts a bearer token (or the admin_token cookie) signed with
// secret. An empty secret disables the check.
func RequireAdmin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}

		tokenStr := ""
		if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
			scheme, value, ok := strings.Cut(auth, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				return fiber.ErrUnauthorized
			}
			tokenStr = strings.TrimSpace(value)
		} else {
			tokenStr = c.Cookies(AdminCookie)
		}
		if tokenStr == "" {
			return fiber.ErrUnauthorized
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		if strings.ToLower(strings.TrimSpace(claims.Role)) != utils.AdminRole {
			return fiber.NewError(fiber.StatusForbidden, "forbidden: insufficient role")
		}

		c.Locals("admin", claims.Subject)
		return c.Next()
	}
}
