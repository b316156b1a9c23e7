package payments

import (
	"context"
	"encoding/json"
	"errors"

	"leder/internal/services"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe is the hosted checkout gateway.
type Stripe struct {
	api           *client.API
	webhookSecret string
	currency      string
}

func NewStripe(secretKey, webhookSecret, currency string) *Stripe {
	return &Stripe{api: client.New(secretKey, nil), webhookSecret: webhookSecret, currency: currency}
}

func (s *Stripe) CreateCheckout(ctx context.Context, req services.CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		ClientReferenceID:  stripe.String(req.OrderNumber),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	for _, l := range req.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String(l.Name)}
		if l.Image != "" {
			product.Images = stripe.StringSlice([]string{l.Image})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(s.currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(l.Amount),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}
	params.Context = ctx
	params.AddMetadata("orderId", req.OrderID)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the order reference.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (services.PaymentEvent, error) {
	if s.webhookSecret == "" {
		return services.PaymentEvent{}, errors.New("webhook secret is not configured")
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return services.PaymentEvent{}, err
	}
	out := services.PaymentEvent{ID: ev.ID, Type: string(ev.Type)}
	if ev.Type != "checkout.session.completed" || ev.Data == nil {
		return out, nil
	}
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
		return services.PaymentEvent{}, err
	}
	out.OrderID = sess.Metadata["orderId"]
	if sess.PaymentIntent != nil {
		out.PaymentID = sess.PaymentIntent.ID
	} else {
		out.PaymentID = sess.ID
	}
	return out, nil
}
