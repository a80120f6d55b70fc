package models

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

type Event struct {
	ID            uuid.UUID   `json:"id"`
	OrganizerID   *uuid.UUID  `json:"organizer_id"`
	VenueID       *uuid.UUID  `json:"venue_id"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	Summary       *string     `json:"summary"`
	DescriptionMD *string     `json:"description_md"`
	Category      *string     `json:"category"`
	Tags          []string    `json:"tags"`
	ImageURL      *string     `json:"image_url"`
	StartAt       time.Time   `json:"start_at"`
	EndAt         time.Time   `json:"end_at"`
	Timezone      string      `json:"timezone"`
	Status        EventStatus `json:"status"`
	SalesStartAt  *time.Time  `json:"sales_start_at"`
	SalesEndAt    *time.Time  `json:"sales_end_at"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// EventFilter narrows the published catalog. Zero values disable a filter.
type EventFilter struct {
	Query string
	From  *time.Time
	To    *time.Time
}

type Venue struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	City      *string   `json:"city"`
	GeoLat    *float64  `json:"geo_lat"`
	GeoLng    *float64  `json:"geo_lng"`
	Capacity  *int      `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

type EventDetails struct {
	Event   Event        `json:"event"`
	Venue   *Venue       `json:"venue"`
	Tickets []TicketType `json:"tickets"`
}
