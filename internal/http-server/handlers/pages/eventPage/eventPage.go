package eventPage

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventsBooking/internal/config"
	"eventsBooking/internal/lib/logger/sl"
	"eventsBooking/internal/models"
	"eventsBooking/internal/storage"
	"eventsBooking/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventGetter
type EventGetter interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.EventDetails, error)
}

func New(log *slog.Logger, getter EventGetter, renderer *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pages.eventPage.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		render := func(status int, page string, data any) {
			if err := renderer.Render(w, status, page, data); err != nil {
				log.Error("failed to render page", sl.Err(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}

		notFound := web.ErrorData{Title: "Event not found"}

		eventID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			log.Info("invalid event id", sl.Err(err))
			render(http.StatusNotFound, web.PageNotFound, notFound)
			return
		}

		details, err := getter.GetEvent(r.Context(), eventID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrEventNotFound):
				log.Info("event not found", slog.String("event_id", eventID.String()))
				render(http.StatusNotFound, web.PageNotFound, notFound)
			case errors.Is(err, config.ErrNotConfigured):
				log.Warn("events store not configured", sl.Err(err))
				render(http.StatusServiceUnavailable, web.PageNotFound, web.ErrorData{
					Title:   "Events unavailable",
					Message: "The events database is not configured.",
				})
			default:
				log.Error("failed to get event", sl.Err(err))
				render(http.StatusInternalServerError, web.PageNotFound, web.ErrorData{
					Title:   "Something went wrong",
					Message: "Please try again later.",
				})
			}
			return
		}

		render(http.StatusOK, web.PageEvent, web.EventData{
			Event:   details.Event,
			Venue:   details.Venue,
			Tickets: details.Tickets,
		})
	}
}
