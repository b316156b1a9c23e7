package handlers

import (
	applog "leder/internal/log"
	"leder/internal/services"

	"github.com/gofiber/fiber/v2"
)

type SupportHandler struct {
	Support *services.SupportService
}

// POST /api/support
func (h *SupportHandler) Open(c *fiber.Ctx) error {
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, "support.open", err)
	}
	t, err := h.Support.Open(body.Name, body.Email, body.Subject, body.Message)
	if err != nil {
		return respondErr(c, "support.open", err)
	}
	applog.Audit(c, "support.open", map[string]any{"ticket_id": t.ID})
	return c.Status(fiber.StatusCreated).JSON(t)
}
