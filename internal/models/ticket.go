package models

import "github.com/google/uuid"

type TicketType struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"event_id"`
	Name         string    `json:"name"`
	PriceCents   int64     `json:"price_cents"`
	Currency     string    `json:"currency"`
	Inventory    int       `json:"inventory"`
	PerUserLimit int       `json:"per_user_limit"`
	IsActive     bool      `json:"is_active"`
	SortOrder    int       `json:"sort_order"`
}
