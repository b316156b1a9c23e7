package handlers

import (
	"leder/internal/domain"
	applog "leder/internal/log"
	"leder/internal/services"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return respondErr(c, "categories.list", err)
	}
	return c.JSON(cats)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var cat domain.Category
	if err := c.BodyParser(&cat); err != nil {
		return badBody(c, "admin.categories.create", err)
	}
	if err := h.Catalog.CreateCategory(&cat); err != nil {
		return respondErr(c, "admin.categories.create", err)
	}
	applog.Audit(c, "admin.categories.create", map[string]any{"category_id": cat.ID, "slug": cat.Slug})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var cat domain.Category
	if err := c.BodyParser(&cat); err != nil {
		return badBody(c, "admin.categories.update", err)
	}
	cat.ID = c.Params("id")
	if err := h.Catalog.UpdateCategory(&cat); err != nil {
		return respondErr(c, "admin.categories.update", err)
	}
	applog.Audit(c, "admin.categories.update", map[string]any{"category_id": cat.ID})
	return c.JSON(cat)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteCategory(id); err != nil {
		return respondErr(c, "admin.categories.delete", err)
	}
	applog.Audit(c, "admin.categories.delete", map[string]any{"category_id": id})
	return c.JSON(fiber.Map{"success": true})
}
