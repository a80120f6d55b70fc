package models

import (
	"time"

	"github.com/google/uuid"
)

const PaymentStatusPaid = "paid"

type Payment struct {
	ID                    uuid.UUID `json:"id"`
	BookingID             uuid.UUID `json:"booking_id"`
	StripePaymentIntentID *string   `json:"stripe_payment_intent_id"`
	Status                string    `json:"status"`
	AmountCents           int64     `json:"amount_cents"`
	ReceiptURL            *string   `json:"receipt_url"`
	CreatedAt             time.Time `json:"created_at"`
}

// BookingPaid is published once a booking transitions to paid.
type BookingPaid struct {
	BookingID       uuid.UUID `json:"booking_id"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `json:"currency"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	PaidAt          time.Time `json:"paid_at"`
}
