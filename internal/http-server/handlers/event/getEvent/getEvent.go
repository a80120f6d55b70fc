package getEvent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventsBooking/internal/config"
	"eventsBooking/internal/lib/api/response"
	"eventsBooking/internal/lib/logger/sl"
	"eventsBooking/internal/models"
	"eventsBooking/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type EventResponse struct {
	response.Response
	Event   models.Event        `json:"event"`
	Venue   *models.Venue       `json:"venue"`
	Tickets []models.TicketType `json:"tickets"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventGetter
type EventGetter interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.EventDetails, error)
}

func New(log *slog.Logger, getter EventGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.getEvent.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		eventIDStr := chi.URLParam(r, "id")
		if eventIDStr == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		eventID, err := uuid.Parse(eventIDStr)
		if err != nil {
			log.Info("event id does not resolve", sl.Err(err))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
			return
		}

		log = log.With(slog.String("event_id", eventID.String()))

		details, err := getter.GetEvent(r.Context(), eventID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrEventNotFound):
				log.Info("event not found")
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.Is(err, config.ErrNotConfigured):
				log.Warn("events store not configured", sl.Err(err))
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.SetupRequired("database", "Set STORE_URL and STORE_SERVICE_KEY to connect the events database."))
			default:
				log.Error("failed to get event", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to get event"))
			}
			return
		}

		log.Info("event retrieved", slog.Int("tickets", len(details.Tickets)))

		responseOK(w, r, details)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, details *models.EventDetails) {
	tickets := details.Tickets
	if tickets == nil {
		tickets = []models.TicketType{}
	}

	render.JSON(w, r, EventResponse{
		Response: response.OK(),
		Event:    details.Event,
		Venue:    details.Venue,
		Tickets:  tickets,
	})
}
