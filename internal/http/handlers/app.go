package handlers

import (
	"errors"
	"time"

	applog "leder/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const maxBodySize = 1 << 20 // 1 MiB

// Limits are per client IP.
type Limits struct {
	Global   int
	Login    int
	Shipping int
}

var DefaultLimits = Limits{Global: 120, Login: 5, Shipping: 30}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return jsonErr(c, fe.Code, fe.Message)
	}
	applog.Error(c, "server.error", err, nil)
	return jsonErr(c, fiber.StatusInternalServerError, genericError)
}

func rateLimit(max int, window time.Duration, action string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + action
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate."+action+".hit", nil)
			return jsonErr(c, fiber.StatusTooManyRequests, "Too many requests, retry soon")
		},
	})
}

// NewApp builds the JSON API with middleware and routes.
func NewApp(d *Deps, lim Limits) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    maxBodySize,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(rateLimit(lim.Global, time.Minute, "global"))
	app.Use(AttachUser(d.Auth))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api")

	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id/availability", d.ProductHandler.Availability)
	api.Get("/products/:idOrSlug", d.ProductHandler.Detail)
	api.Get("/categories", d.CategoryHandler.List)
	api.Post("/cart/quote", d.CartHandler.Quote)

	api.Post("/orders", d.OrderHandler.Create)
	api.Get("/orders", RequireUser(), d.OrderHandler.List)
	api.Get("/orders/:id", RequireUser(), d.OrderHandler.Get)
	api.Put("/orders/:id", RequireAdmin(), d.OrderHandler.Update)

	api.Post("/auth/register", d.AuthHandler.Register)
	api.Post("/auth/login", rateLimit(lim.Login, 10*time.Minute, "login"), d.AuthHandler.Login)
	api.Post("/auth/logout", d.AuthHandler.Logout)
	api.Get("/users/me", RequireUser(), d.AuthHandler.Me)
	api.Put("/users/me", RequireUser(), d.AuthHandler.UpdateMe)

	api.Post("/payments/checkout", d.PaymentHandler.Checkout)
	api.Post("/payments/webhook", d.PaymentHandler.Webhook)

	ship := api.Group("/shipping", rateLimit(lim.Shipping, time.Minute, "shipping"))
	ship.Get("/cities", d.ShippingHandler.Cities)
	ship.Get("/warehouses", d.ShippingHandler.Warehouses)

	api.Get("/reviews", d.ReviewHandler.ForProduct)
	api.Get("/reviews/featured", d.ReviewHandler.Featured)
	api.Post("/reviews", RequireUser(), d.ReviewHandler.Create)
	api.Get("/reviews/:id", d.ReviewHandler.Get)
	api.Put("/reviews/:id", RequireUser(), d.ReviewHandler.Update)
	api.Delete("/reviews/:id", RequireUser(), d.ReviewHandler.Delete)
	api.Post("/reviews/:id/reply", RequireUser(), d.ReviewHandler.Reply)
	api.Post("/reviews/:id/like", RequireUser(), d.ReviewHandler.Like)

	api.Post("/support", d.SupportHandler.Open)

	admin := api.Group("/admin", RequireAdmin())
	admin.Get("/stats", d.AdminHandler.Stats)
	admin.Get("/products", d.ProductHandler.AdminList)
	admin.Post("/products", d.ProductHandler.Create)
	admin.Get("/products/:id", d.ProductHandler.AdminGet)
	admin.Put("/products/:id", d.ProductHandler.Update)
	admin.Delete("/products/:id", d.ProductHandler.Delete)
	admin.Put("/products/:id/variants/:variantId/stock", d.ProductHandler.SetStock)
	admin.Post("/categories", d.CategoryHandler.Create)
	admin.Put("/categories/:id", d.CategoryHandler.Update)
	admin.Delete("/categories/:id", d.CategoryHandler.Delete)
	admin.Get("/users", d.AdminHandler.Users)
	admin.Get("/users/:id", d.AdminHandler.User)
	admin.Put("/users/:id", d.AdminHandler.UpdateUser)
	admin.Get("/reviews", d.AdminHandler.ReviewList)
	admin.Get("/support", d.AdminHandler.Tickets)
	admin.Put("/support/:id", d.AdminHandler.TicketStatus)
	admin.Delete("/support/:id", d.AdminHandler.DeleteTicket)
	admin.Post("/support/:id/reply", d.AdminHandler.ReplyTicket)

	app.Use(func(c *fiber.Ctx) error {
		return jsonErr(c, fiber.StatusNotFound, "not found")
	})
	return app
}
