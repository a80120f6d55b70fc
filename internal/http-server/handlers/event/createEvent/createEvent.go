package createEvent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"eventsBooking/internal/http-server/middleware/mwauth"
	"eventsBooking/internal/lib/api/response"
	"eventsBooking/internal/lib/logger/sl"
	"eventsBooking/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type TicketRequest struct {
	Name         string `json:"name" validate:"required"`
	PriceCents   int64  `json:"priceCents" validate:"gte=0"`
	Currency     string `json:"currency" validate:"required,len=3"`
	Inventory    int    `json:"inventory" validate:"gte=0"`
	PerUserLimit int    `json:"perUserLimit" validate:"gte=0"`
	SortOrder    int    `json:"sortOrder"`
}

type EventRequest struct {
	Title        string          `json:"title" validate:"required"`
	Slug         string          `json:"slug"`
	Summary      *string         `json:"summary"`
	Description  *string         `json:"description"`
	Category     *string         `json:"category"`
	Tags         []string        `json:"tags"`
	ImageURL     *string         `json:"imageUrl" validate:"omitempty,url"`
	StartAt      time.Time       `json:"startAt" validate:"required"`
	EndAt        time.Time       `json:"endAt" validate:"required,gtfield=StartAt"`
	Timezone     string          `json:"timezone"`
	Status       string          `json:"status" validate:"omitempty,oneof=draft published cancelled"`
	VenueID      *uuid.UUID      `json:"venueId"`
	SalesStartAt *time.Time      `json:"salesStartAt"`
	SalesEndAt   *time.Time      `json:"salesEndAt"`
	Tickets      []TicketRequest `json:"tickets" validate:"required,min=1,dive"`
}

type EventResponse struct {
	response.Response
	ID uuid.UUID `json:"id"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventCreator
type EventCreator interface {
	CreateEvent(ctx context.Context, e models.Event, tickets []models.TicketType) (uuid.UUID, error)
}

func New(log *slog.Logger, creator EventCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.createEvent.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		organizerID, ok := mwauth.UserID(r.Context())
		if !ok {
			log.Error("missing organizer identity")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}

		var req EventRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		log.Info("request body decoded", slog.String("title", req.Title), slog.Int("tickets", len(req.Tickets)))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		event, tickets := req.toModels(organizerID)

		id, err := creator.CreateEvent(r.Context(), event, tickets)
		if err != nil {
			log.Error("failed to add event", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to add event"))
			return
		}

		log.Info("event added", slog.String("id", id.String()), slog.String("slug", event.Slug))

		responseOK(w, r, id)
	}
}

func (req EventRequest) toModels(organizerID uuid.UUID) (models.Event, []models.TicketType) {
	event := models.Event{
		OrganizerID:   &organizerID,
		VenueID:       req.VenueID,
		Title:         req.Title,
		Slug:          req.Slug,
		Summary:       req.Summary,
		DescriptionMD: req.Description,
		Category:      req.Category,
		Tags:          req.Tags,
		ImageURL:      req.ImageURL,
		StartAt:       req.StartAt.UTC(),
		EndAt:         req.EndAt.UTC(),
		Timezone:      req.Timezone,
		Status:        models.EventStatus(req.Status),
		SalesStartAt:  req.SalesStartAt,
		SalesEndAt:    req.SalesEndAt,
	}
	if event.Slug == "" {
		event.Slug = Slugify(req.Title)
	}
	if event.Timezone == "" {
		event.Timezone = "UTC"
	}
	if event.Status == "" {
		event.Status = models.EventStatusDraft
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}

	tickets := make([]models.TicketType, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		tickets = append(tickets, models.TicketType{
			Name:         t.Name,
			PriceCents:   t.PriceCents,
			Currency:     strings.ToLower(t.Currency),
			Inventory:    t.Inventory,
			PerUserLimit: t.PerUserLimit,
			IsActive:     true,
			SortOrder:    t.SortOrder,
		})
	}

	return event, tickets
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title and joins its alphanumeric runs with dashes.
func Slugify(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

func responseOK(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	render.JSON(w, r, EventResponse{
		Response: response.OK(),
		ID:       id,
	})
}
