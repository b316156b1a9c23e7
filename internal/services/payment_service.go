package services

import (
	"context"
	"errors"

	"leder/internal/domain"
	"leder/internal/repos"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const eventCheckoutCompleted = "checkout.session.completed"

// CheckoutLine is priced from the stored order snapshot.
type CheckoutLine struct {
	Name     string
	Image    string
	Amount   int64 // minor units
	Quantity int64
}

type CheckoutRequest struct {
	OrderID     string
	OrderNumber string
	Email       string
	Lines       []CheckoutLine
	SuccessURL  string
	CancelURL   string
}

// PaymentEvent is a verified gateway notification.
type PaymentEvent struct {
	ID        string
	Type      string
	OrderID   string
	PaymentID string
}

// Gateway is the hosted-checkout provider.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)
	ParseWebhook(payload []byte, signature string) (PaymentEvent, error)
}

type PaymentService struct {
	DB       *sqlx.DB
	Orders   *repos.OrderRepo
	Payments *repos.PaymentRepo
	Gateway  Gateway
}

func NewPaymentService(db *sqlx.DB, orders *repos.OrderRepo, payments *repos.PaymentRepo, gw Gateway) *PaymentService {
	return &PaymentService{DB: db, Orders: orders, Payments: payments, Gateway: gw}
}

// MinorUnits converts a price to kopecks, rounding half away from zero.
func MinorUnits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// StartCheckout opens a hosted checkout for an unpaid online order and returns its URL.
func (s *PaymentService) StartCheckout(ctx context.Context, orderID, origin string) (string, error) {
	if s.Gateway == nil {
		return "", ErrPaymentsDisabled
	}
	o, err := s.Orders.Get(orderID)
	if errors.Is(err, repos.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if o.PaymentMethod != domain.PaymentOnline || o.Status != domain.OrderNew {
		return "", invalid(ErrInvalidOrder, "Order is not awaiting online payment")
	}

	req := CheckoutRequest{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Email:       o.Customer.Email,
		SuccessURL:  origin + "/success?session_id={CHECKOUT_SESSION_ID}&order_id=" + o.ID,
		CancelURL:   origin + "/checkout?cancelled=true",
	}
	for _, it := range o.Items {
		name := it.Title
		if it.Color != "" {
			name += " - " + it.Color
		}
		req.Lines = append(req.Lines, CheckoutLine{
			Name:     name,
			Image:    it.Image,
			Amount:   MinorUnits(it.Price),
			Quantity: int64(it.Quantity),
		})
	}
	if o.ShippingCost.IsPositive() {
		req.Lines = append(req.Lines, CheckoutLine{Name: "Доставка", Amount: MinorUnits(o.ShippingCost), Quantity: 1})
	}
	return s.Gateway.CreateCheckout(ctx, req)
}

// WebhookResult says what a notification did.
type WebhookResult struct {
	Event   PaymentEvent
	Applied bool // the order moved to received
	Replay  bool // the event id had been processed before
}

// HandleWebhook verifies and applies a gateway notification. Redelivered
// events and events for unknown or already advanced orders change nothing.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	if s.Gateway == nil {
		return WebhookResult{}, ErrPaymentsDisabled
	}
	ev, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		return WebhookResult{}, ErrBadSignature
	}
	res := WebhookResult{Event: ev}
	if ev.Type != eventCheckoutCompleted || ev.OrderID == "" {
		return res, nil
	}
	err = repos.WithTxContext(ctx, s.DB, func(tx *sqlx.Tx) error {
		fresh, err := s.Payments.RecordEvent(tx, ev.ID, ev.OrderID, ev.Type)
		if err != nil {
			return err
		}
		if !fresh {
			res.Replay = true
			return nil
		}
		res.Applied, err = s.Orders.MarkPaid(tx, ev.OrderID, ev.PaymentID)
		return err
	})
	return res, err
}
