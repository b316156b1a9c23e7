package handlers

import (
	"time"

	applog "leder/internal/log"
	"leder/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth         *services.AuthService
	SecureCookie bool
}

func (h *AuthHandler) setSession(c *fiber.Ctx, sid string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookie,
	})
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.Registration
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "auth.register", err)
	}
	u, err := h.Auth.Register(in)
	if err != nil {
		return respondErr(c, "auth.register", err)
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(u)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, "auth.login", err)
	}
	u, sid, err := h.Auth.Login(body.Email, body.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": body.Email})
		return respondErr(c, "auth.login", err)
	}
	h.setSession(c, sid, time.Now().Add(h.Auth.SessionTTL))
	c.Locals("user", u)
	applog.Audit(c, "auth.login", nil)
	return c.JSON(u)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.Cookies(sessionCookie)); err != nil {
		applog.Error(c, "auth.logout.fail", err, nil)
	}
	h.setSession(c, "", time.Unix(0, 0))
	applog.Audit(c, "auth.logout", nil)
	return c.JSON(fiber.Map{"success": true})
}

// GET /api/users/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// PUT /api/users/me
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	var p services.ProfilePatch
	if err := c.BodyParser(&p); err != nil {
		return badBody(c, "users.me.update", err)
	}
	if p.Role != nil {
		applog.Security(c, "users.me.role_change", map[string]any{"role": *p.Role})
		return jsonErr(c, fiber.StatusForbidden, "Not authorized")
	}
	u, err := h.Auth.UpdateProfile(currentUser(c).ID, p)
	if err != nil {
		return respondErr(c, "users.me.update", err)
	}
	applog.Audit(c, "users.me.update", nil)
	return c.JSON(u)
}
