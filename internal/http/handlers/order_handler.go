package handlers

import (
	"strings"

	"leder/internal/domain"
	applog "leder/internal/log"
	"leder/internal/repos"
	"leder/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type orderRequest struct {
	Customer      domain.Customer      `json:"customer"`
	Shipping      domain.Shipping      `json:"shipping"`
	Items         []services.OrderLine `json:"items"`
	Subtotal      *decimal.Decimal     `json:"subtotal"`
	ShippingCost  decimal.Decimal      `json:"shippingCost"`
	TotalPrice    *decimal.Decimal     `json:"totalPrice"`
	PaymentMethod string               `json:"paymentMethod"`
}

// POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "order.place", err)
	}
	in := services.NewOrder{
		Customer:       req.Customer,
		Shipping:       req.Shipping,
		Items:          req.Items,
		ShippingCost:   req.ShippingCost,
		PaymentMethod:  req.PaymentMethod,
		ClientSubtotal: req.Subtotal,
		ClientTotal:    req.TotalPrice,
	}
	if u := currentUser(c); u != nil {
		in.UserID = u.ID
	}

	o, err := h.Orders.Create(c.UserContext(), in)
	if err != nil {
		return respondErr(c, "order.place", err)
	}
	fields := map[string]any{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"server_total": o.TotalPrice.String(),
		"mismatch":     services.TotalsMismatch(in, o),
	}
	if req.TotalPrice != nil {
		fields["client_total"] = req.TotalPrice.String()
	}
	applog.Audit(c, "order.place", fields)
	return c.Status(fiber.StatusCreated).JSON(o)
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	o, err := h.Orders.Get(c.Params("id"))
	if err != nil {
		return respondErr(c, "order.view", err)
	}
	if !services.CanView(currentUser(c), o) {
		// unknown and foreign orders look the same
		applog.Security(c, "access.denied.order", map[string]any{"order_id": o.ID})
		return jsonErr(c, fiber.StatusNotFound, "Not found")
	}
	return c.JSON(o)
}

// GET /api/orders?email=&status=
func (h *OrderHandler) List(c *fiber.Ctx) error {
	u := currentUser(c)
	f := repos.OrderFilter{
		Email:  strings.TrimSpace(c.Query("email")),
		Status: c.Query("status"),
	}
	if !u.IsAdmin() {
		if f.Email != "" && !strings.EqualFold(f.Email, u.Email) {
			applog.Security(c, "access.denied.orders", map[string]any{"email": f.Email})
			return jsonErr(c, fiber.StatusForbidden, "Not authorized")
		}
		f.Email = u.Email
	}
	orders, err := h.Orders.List(f)
	if err != nil {
		return respondErr(c, "orders.list", err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// PUT /api/orders/:id (admin)
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, "admin.orders.update", err)
	}
	id := c.Params("id")
	o, err := h.Orders.UpdateStatus(id, body.Status)
	if err != nil {
		return respondErr(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": body.Status})
	return c.JSON(o)
}
