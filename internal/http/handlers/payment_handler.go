package handlers

import (
	"strings"

	applog "leder/internal/log"
	"leder/internal/services"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	Payments  *services.PaymentService
	PublicURL string
}

// POST /api/payments/checkout
// Redirect targets always come from PUBLIC_URL, never from request headers.
func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	var body struct {
		OrderID string `json:"orderId"`
	}
	if err := c.BodyParser(&body); err != nil || body.OrderID == "" {
		return jsonErr(c, fiber.StatusBadRequest, "orderId is required")
	}
	url, err := h.Payments.StartCheckout(c.UserContext(), body.OrderID, strings.TrimRight(h.PublicURL, "/"))
	if err != nil {
		return respondErr(c, "payments.checkout", err)
	}
	applog.Audit(c, "payments.checkout", map[string]any{"order_id": body.OrderID})
	return c.JSON(fiber.Map{"url": url})
}

// POST /api/payments/webhook
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	res, err := h.Payments.HandleWebhook(c.UserContext(), payload, c.Get("Stripe-Signature"))
	if err != nil {
		return respondErr(c, "payments.webhook", err)
	}
	applog.Audit(c, "payments.webhook", map[string]any{
		"event_id": res.Event.ID,
		"type":     res.Event.Type,
		"order_id": res.Event.OrderID,
		"applied":  res.Applied,
		"replay":   res.Replay,
	})
	return c.JSON(fiber.Map{"received": true})
}
