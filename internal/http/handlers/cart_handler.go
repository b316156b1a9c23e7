package handlers

import (
	"leder/internal/services"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

const maxCartLines = 100

// POST /api/cart/quote
func (h *CartHandler) Quote(c *fiber.Ctx) error {
	var body struct {
		Items []services.OrderLine `json:"items"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, "cart.quote", err)
	}
	if len(body.Items) > maxCartLines {
		return jsonErr(c, fiber.StatusBadRequest, "Too many items")
	}
	q, err := h.Cart.Quote(body.Items)
	if err != nil {
		return respondErr(c, "cart.quote", err)
	}
	return c.JSON(q)
}
