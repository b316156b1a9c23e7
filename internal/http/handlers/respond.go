package handlers

import (
	"errors"

	applog "leder/internal/log"
	"leder/internal/services"

	"github.com/gofiber/fiber/v2"
)

const genericError = "Something went wrong. Please try again."

func jsonErr(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// respondErr maps service errors to HTTP statuses. Only messages we wrote
// ourselves reach the client; anything unexpected becomes a generic 500.
func respondErr(c *fiber.Ctx, action string, err error) error {
	var inErr *services.InputError
	var stockErr *services.StockError
	var missing *services.MissingProductError

	switch {
	case errors.As(err, &inErr):
		applog.Security(c, "validation.fail", map[string]any{"action": action, "reason": inErr.Msg})
		return jsonErr(c, fiber.StatusBadRequest, inErr.Msg)
	case errors.As(err, &stockErr):
		applog.Info(c, action+".rejected", map[string]any{"reason": "stock", "product_id": stockErr.ProductID, "variant_id": stockErr.VariantID})
		return jsonErr(c, fiber.StatusBadRequest, stockErr.Error())
	case errors.As(err, &missing):
		return jsonErr(c, fiber.StatusNotFound, missing.Error())
	case errors.Is(err, services.ErrProductNotFound):
		return jsonErr(c, fiber.StatusNotFound, "Product not found")
	case errors.Is(err, services.ErrNotFound):
		return jsonErr(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrOrderNumberCollision):
		applog.Warn(c, action+".collision", err, nil)
		return jsonErr(c, fiber.StatusConflict, "Could not allocate an order number, please retry")
	case errors.Is(err, services.ErrDuplicateSlug),
		errors.Is(err, services.ErrDuplicateReview),
		errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrInvalidOrder),
		errors.Is(err, services.ErrInvalidInput):
		return jsonErr(c, fiber.StatusBadRequest, capitalize(err.Error()))
	case errors.Is(err, services.ErrBadSignature):
		applog.Security(c, action+".bad_signature", nil)
		return jsonErr(c, fiber.StatusBadRequest, "Invalid signature")
	case errors.Is(err, services.ErrBadCreds):
		return jsonErr(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrUnauthenticated):
		return jsonErr(c, fiber.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, services.ErrForbidden):
		applog.Security(c, "access.denied", map[string]any{"action": action})
		return jsonErr(c, fiber.StatusForbidden, "Not authorized")
	case errors.Is(err, services.ErrPaymentsDisabled):
		return jsonErr(c, fiber.StatusServiceUnavailable, "Online payments are unavailable")
	default:
		applog.Error(c, action+".fail", err, nil)
		return jsonErr(c, fiber.StatusInternalServerError, genericError)
	}
}

func badBody(c *fiber.Ctx, action string, err error) error {
	applog.Security(c, "validation.fail", map[string]any{"action": action, "reason": "body", "err": err.Error()})
	return jsonErr(c, fiber.StatusBadRequest, "Invalid request body")
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
