package handlers

import (
	"leder/internal/domain"
	applog "leder/internal/log"
	"leder/internal/services"

	"github.com/gofiber/fiber/v2"
)

const sessionCookie = "sid"

// AttachUser resolves the session cookie, if any, and stores the user in Locals.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies(sessionCookie); sid != "" {
			if u, err := auth.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// RequireUser rejects requests without a live session.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return jsonErr(c, fiber.StatusUnauthorized, "Not authenticated")
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return jsonErr(c, fiber.StatusUnauthorized, "Not authenticated")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID})
			return jsonErr(c, fiber.StatusForbidden, "Not authorized")
		}
		return c.Next()
	}
}
