package handlers

import (
	"leder/internal/domain"
	applog "leder/internal/log"
	"leder/internal/services"
	"leder/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Inv     *services.InventoryService
}

func productQuery(c *fiber.Ctx) services.ProductQuery {
	q := c.Query("q")
	if q == "" {
		q = c.Query("search")
	}
	return services.ProductQuery{
		Categories: validate.List(c.Query("category")),
		Colors:     validate.List(c.Query("color")),
		MinPrice:   validate.Decimal(c.Query("minPrice")),
		MaxPrice:   validate.Decimal(c.Query("maxPrice")),
		Q:          q,
		Sort:       c.Query("sort"),
		Order:      c.Query("order"),
		Status:     c.Query("status"),
		Page:       validate.Int(c.Query("page"), 1),
		Limit:      validate.Int(c.Query("limit"), 0),
	}
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, err := h.Catalog.Query(productQuery(c))
	if err != nil {
		return respondErr(c, "products.list", err)
	}
	return c.JSON(page)
}

// GET /api/products/:idOrSlug
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Catalog.GetPublic(c.Params("idOrSlug"))
	if err != nil {
		return respondErr(c, "products.detail", err)
	}
	return c.JSON(p)
}

// GET /api/products/:id/availability?variantId=
func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	vid, okV := validate.ID(c.Query("variantId"))
	if !ok || !okV {
		applog.Security(c, "validation.fail", map[string]any{"field": "variantId"})
		return jsonErr(c, fiber.StatusBadRequest, "Missing product or variant id")
	}
	a, err := h.Inv.Availability(pid, vid)
	if err != nil {
		return respondErr(c, "products.availability", err)
	}
	return c.JSON(a)
}

// GET /api/admin/products
func (h *ProductHandler) AdminList(c *fiber.Ctx) error {
	page, err := h.Catalog.AdminQuery(productQuery(c))
	if err != nil {
		return respondErr(c, "admin.products.list", err)
	}
	return c.JSON(page)
}

// GET /api/admin/products/:id
func (h *ProductHandler) AdminGet(c *fiber.Ctx) error {
	p, err := h.Catalog.Get(c.Params("id"))
	if err != nil {
		return respondErr(c, "admin.products.get", err)
	}
	return c.JSON(p)
}

// POST /api/admin/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		return badBody(c, "admin.products.create", err)
	}
	if err := h.Catalog.Create(&p); err != nil {
		return respondErr(c, "admin.products.create", err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID, "slug": p.Slug})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/admin/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		return badBody(c, "admin.products.update", err)
	}
	p.ID = c.Params("id")
	if err := h.Catalog.Update(&p); err != nil {
		return respondErr(c, "admin.products.update", err)
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": p.ID})
	updated, err := h.Catalog.Get(p.ID)
	if err != nil {
		return respondErr(c, "admin.products.update", err)
	}
	return c.JSON(updated)
}

// DELETE /api/admin/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.Delete(id); err != nil {
		return respondErr(c, "admin.products.delete", err)
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"success": true})
}

// PUT /api/admin/products/:id/variants/:variantId/stock
func (h *ProductHandler) SetStock(c *fiber.Ctx) error {
	var body struct {
		Stock *int `json:"stock"`
	}
	if err := c.BodyParser(&body); err != nil || body.Stock == nil {
		return jsonErr(c, fiber.StatusBadRequest, "Stock is required")
	}
	pid, vid := c.Params("id"), c.Params("variantId")
	if err := h.Inv.SetStock(pid, vid, *body.Stock); err != nil {
		return respondErr(c, "admin.inventory.save", err)
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"product_id": pid, "variant_id": vid, "stock": *body.Stock})
	a, err := h.Inv.Availability(pid, vid)
	if err != nil {
		return respondErr(c, "admin.inventory.save", err)
	}
	return c.JSON(a)
}
