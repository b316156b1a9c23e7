package handlers

import (
	applog "leder/internal/log"
	"leder/internal/services"
	"leder/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

type reviewBody struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// GET /api/reviews?productId=
func (h *ReviewHandler) ForProduct(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Query("productId"))
	if !ok {
		return jsonErr(c, fiber.StatusBadRequest, "productId is required")
	}
	out, err := h.Reviews.ForProduct(pid)
	if err != nil {
		return respondErr(c, "reviews.list", err)
	}
	return c.JSON(out)
}

// GET /api/reviews/featured?limit=
func (h *ReviewHandler) Featured(c *fiber.Ctx) error {
	out, err := h.Reviews.Featured(validate.Int(c.Query("limit"), 0))
	if err != nil {
		return respondErr(c, "reviews.featured", err)
	}
	return c.JSON(out)
}

func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	r, err := h.Reviews.Get(c.Params("id"))
	if err != nil {
		return respondErr(c, "reviews.get", err)
	}
	return c.JSON(r)
}

// POST /api/reviews
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var body reviewBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, "reviews.create", err)
	}
	r, err := h.Reviews.Create(currentUser(c), body.ProductID, body.Rating, body.Comment)
	if err != nil {
		return respondErr(c, "reviews.create", err)
	}
	applog.Audit(c, "reviews.create", map[string]any{"review_id": r.ID, "product_id": r.ProductID, "rating": r.Rating})
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	var p services.ReviewPatch
	if err := c.BodyParser(&p); err != nil {
		return badBody(c, "reviews.update", err)
	}
	r, err := h.Reviews.Update(currentUser(c), c.Params("id"), p)
	if err != nil {
		return respondErr(c, "reviews.update", err)
	}
	applog.Audit(c, "reviews.update", map[string]any{"review_id": r.ID})
	return c.JSON(r)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Reviews.Delete(currentUser(c), id); err != nil {
		return respondErr(c, "reviews.delete", err)
	}
	applog.Audit(c, "reviews.delete", map[string]any{"review_id": id})
	return c.JSON(fiber.Map{"success": true})
}

// POST /api/reviews/:id/reply
func (h *ReviewHandler) Reply(c *fiber.Ctx) error {
	var body reviewBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, "reviews.reply", err)
	}
	r, err := h.Reviews.Reply(currentUser(c), c.Params("id"), body.Comment)
	if err != nil {
		return respondErr(c, "reviews.reply", err)
	}
	applog.Audit(c, "reviews.reply", map[string]any{"review_id": r.ID, "parent_id": *r.ParentID})
	return c.Status(fiber.StatusCreated).JSON(r)
}

// POST /api/reviews/:id/like
func (h *ReviewHandler) Like(c *fiber.Ctx) error {
	liked, n, err := h.Reviews.ToggleLike(currentUser(c), c.Params("id"))
	if err != nil {
		return respondErr(c, "reviews.like", err)
	}
	return c.JSON(fiber.Map{"liked": liked, "likesCount": n})
}
