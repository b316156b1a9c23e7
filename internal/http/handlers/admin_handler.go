package handlers

import (
	applog "leder/internal/log"
	"leder/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Admin   *services.AdminService
	Auth    *services.AuthService
	Reviews *services.ReviewService
	Support *services.SupportService
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Admin.Stats()
	if err != nil {
		return respondErr(c, "admin.stats", err)
	}
	return c.JSON(st)
}

// GET /api/admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.Auth.ListUsers()
	if err != nil {
		return respondErr(c, "admin.users.list", err)
	}
	return c.JSON(users)
}

func (h *AdminHandler) User(c *fiber.Ctx) error {
	u, err := h.Auth.GetUser(c.Params("id"))
	if err != nil {
		return respondErr(c, "admin.users.get", err)
	}
	return c.JSON(u)
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var p services.ProfilePatch
	if err := c.BodyParser(&p); err != nil {
		return badBody(c, "admin.users.update", err)
	}
	id := c.Params("id")
	u, err := h.Auth.UpdateUser(id, p)
	if err != nil {
		return respondErr(c, "admin.users.update", err)
	}
	fields := map[string]any{"user_id": id}
	if p.Role != nil {
		fields["role"] = *p.Role
	}
	applog.Audit(c, "admin.users.update", fields)
	return c.JSON(u)
}

// GET /api/admin/reviews
func (h *AdminHandler) ReviewList(c *fiber.Ctx) error {
	list, err := h.Reviews.AdminList()
	if err != nil {
		return respondErr(c, "admin.reviews.list", err)
	}
	return c.JSON(list)
}

// GET /api/admin/support?status=
func (h *AdminHandler) Tickets(c *fiber.Ctx) error {
	list, err := h.Support.List(c.Query("status"))
	if err != nil {
		return respondErr(c, "admin.support.list", err)
	}
	return c.JSON(list)
}

func (h *AdminHandler) TicketStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, "admin.support.status", err)
	}
	id := c.Params("id")
	t, err := h.Support.SetStatus(id, body.Status)
	if err != nil {
		return respondErr(c, "admin.support.status", err)
	}
	applog.Audit(c, "admin.support.status", map[string]any{"ticket_id": id, "status": body.Status})
	return c.JSON(t)
}

func (h *AdminHandler) DeleteTicket(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Support.Delete(id); err != nil {
		return respondErr(c, "admin.support.delete", err)
	}
	applog.Audit(c, "admin.support.delete", map[string]any{"ticket_id": id})
	return c.JSON(fiber.Map{"success": true})
}

// POST /api/admin/support/:id/reply
func (h *AdminHandler) ReplyTicket(c *fiber.Ctx) error {
	var body struct {
		Reply string `json:"reply"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, "admin.support.reply", err)
	}
	id := c.Params("id")
	res, err := h.Support.Reply(c.UserContext(), id, body.Reply)
	if err != nil {
		return respondErr(c, "admin.support.reply", err)
	}
	if res.MailErr != nil {
		applog.Warn(c, "admin.support.reply.mail", res.MailErr, map[string]any{"ticket_id": id})
	}
	applog.Audit(c, "admin.support.reply", map[string]any{"ticket_id": id, "email_sent": res.EmailSent})
	return c.JSON(res)
}
