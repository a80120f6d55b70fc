// Package payment wraps the hosted checkout provider (Stripe): creating
// checkout sessions and authenticating webhook notifications.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventsBooking/internal/config"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	MetadataBookingID = "booking_id"

	TypeCheckoutCompleted = string(stripe.EventTypeCheckoutSessionCompleted)
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformed        = errors.New("malformed notification")
)

type LineItem struct {
	Name           string
	Currency       string
	UnitPriceCents int64
	Quantity       int64
}

type CheckoutRequest struct {
	BookingID  uuid.UUID
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Notification is an authenticated provider event. CheckoutCompleted is set
// only for checkout completion events.
type Notification struct {
	ID                string
	Type              string
	CheckoutCompleted *CheckoutCompleted
}

type CheckoutCompleted struct {
	SessionID       string
	BookingID       uuid.UUID
	AmountTotal     int64
	Currency        string
	PaymentIntentID string
}

type Provider struct {
	cfg      config.Stripe
	sessions *session.Client
}

func New(cfg config.Stripe) *Provider {
	return NewWithBackend(cfg, stripe.GetBackend(stripe.APIBackend))
}

// NewWithBackend lets callers point the client at a different API backend.
func NewWithBackend(cfg config.Stripe, backend stripe.Backend) *Provider {
	return &Provider{
		cfg:      cfg,
		sessions: &session.Client{B: backend, Key: cfg.SecretKey},
	}
}

func (p *Provider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if err := p.cfg.CheckoutReady(); err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.BookingID.String()),
	}
	params.Context = ctx
	params.AddMetadata(MetadataBookingID, req.BookingID.String())

	for _, item := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(item.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitPriceCents),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	s, err := p.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ParseNotification authenticates payload against the Stripe-Signature header.
// payload must be the request body exactly as received.
func (p *Provider) ParseNotification(payload []byte, signature string) (*Notification, error) {
	if err := p.cfg.WebhookReady(); err != nil {
		return nil, err
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, p.cfg.WebhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSignature, err.Error())
	}

	n := &Notification{ID: event.ID, Type: string(event.Type)}
	if n.Type != TypeCheckoutCompleted {
		return n, nil
	}

	if event.Data == nil {
		return nil, fmt.Errorf("%w: missing data object", ErrMalformed)
	}

	var s stripe.CheckoutSession
	if err = json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err.Error())
	}

	bookingID, err := uuid.Parse(s.Metadata[MetadataBookingID])
	if err != nil {
		return nil, fmt.Errorf("%w: missing or invalid %s metadata", ErrMalformed, MetadataBookingID)
	}

	completed := &CheckoutCompleted{
		SessionID:   s.ID,
		BookingID:   bookingID,
		AmountTotal: s.AmountTotal,
		Currency:    string(s.Currency),
	}
	if s.PaymentIntent != nil {
		completed.PaymentIntentID = s.PaymentIntent.ID
	}
	n.CheckoutCompleted = completed

	return n, nil
}

// SignForTest produces a valid Stripe-Signature header for payload. It exists
// for tests in other packages and local webhook replay.
func SignForTest(payload []byte, secret string, at time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	})
	return signed.Header
}
