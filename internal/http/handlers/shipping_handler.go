package handlers

import (
	"context"

	"leder/internal/shipping"

	"github.com/gofiber/fiber/v2"
)

// Directory is the cached carrier lookup.
type Directory interface {
	Cities(ctx context.Context, query string) []shipping.City
	Warehouses(ctx context.Context, cityRef string) []shipping.Warehouse
}

type ShippingHandler struct {
	Dir Directory
}

// GET /api/shipping/cities?q=
func (h *ShippingHandler) Cities(c *fiber.Ctx) error {
	return c.JSON(h.Dir.Cities(c.UserContext(), c.Query("q")))
}

// GET /api/shipping/warehouses?cityRef=
func (h *ShippingHandler) Warehouses(c *fiber.Ctx) error {
	return c.JSON(h.Dir.Warehouses(c.UserContext(), c.Query("cityRef")))
}
