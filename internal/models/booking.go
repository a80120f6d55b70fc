package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusPaid     BookingStatus = "paid"
	BookingStatusRefunded BookingStatus = "refunded"
	BookingStatusExpired  BookingStatus = "expired"
)

type Booking struct {
	ID         uuid.UUID     `json:"id"`
	UserID     *uuid.UUID    `json:"user_id"`
	EventID    uuid.UUID     `json:"event_id"`
	TotalCents int64         `json:"total_cents"`
	Currency   string        `json:"currency"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type BookingItem struct {
	ID             uuid.UUID `json:"id"`
	BookingID      uuid.UUID `json:"booking_id"`
	TicketTypeID   uuid.UUID `json:"ticket_type_id"`
	Qty            int       `json:"qty"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}
