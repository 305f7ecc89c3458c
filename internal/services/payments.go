package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"
	"github.com/stripe/stripe-go/v83/webhook"

	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/workflow"
)

var ErrPaymentsDisabled = errors.New("payments not configured")

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// PaymentEvent is the subset of a gateway webhook the server acts on.
type PaymentEvent struct {
	Type     string
	IntentID string
	OrderID  string
}

// PaymentGateway creates charges and refunds for online orders.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, o models.Order) (intentID, clientSecret string, err error)
	Refund(ctx context.Context, intentID string, amount float64, idempotencyKey string) (string, error)
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}

// StripeGateway talks to Stripe with the package level API key.
type StripeGateway struct {
	webhookSecret string
}

// NewStripeGateway sets the global Stripe key; it returns nil when no key is configured.
func NewStripeGateway(secretKey, webhookSecret string) PaymentGateway {
	if secretKey == "" {
		return nil
	}
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, o models.Order) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(workflow.ToMinorUnits(o.Amount)),
		Currency: stripe.String(string(stripe.CurrencyINR)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String("FarmLyf order " + o.Number),
	}
	params.Context = ctx
	params.AddMetadata("order_id", o.ID.Hex())
	params.AddMetadata("order_number", o.Number)
	params.SetIdempotencyKey("intent-" + o.ID.Hex())

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe payment intent: %w", err)
	}
	return intent.ID, intent.ClientSecret, nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string, amount float64, idempotencyKey string) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(workflow.ToMinorUnits(amount)),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe refund: %w", err)
	}
	return r.ID, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, err
	}

	out := &PaymentEvent{Type: string(event.Type)}
	if out.Type != EventPaymentSucceeded && out.Type != EventPaymentFailed {
		return out, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	out.IntentID = pi.ID
	out.OrderID = pi.Metadata["order_id"]
	return out, nil
}
