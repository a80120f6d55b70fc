package listEvents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"eventsBooking/internal/config"
	"eventsBooking/internal/lib/api/response"
	"eventsBooking/internal/lib/logger/sl"
	"eventsBooking/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const dateLayout = "2006-01-02"

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventsLister
type EventsLister interface {
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

// New serves the published catalog as a bare JSON array.
func New(log *slog.Logger, lister EventsLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.listEvents.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter, err := parseFilter(r)
		if err != nil {
			log.Error("invalid filter", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		events, err := lister.ListEvents(r.Context(), filter)
		if err != nil {
			if errors.Is(err, config.ErrNotConfigured) {
				log.Warn("events store not configured", sl.Err(err))
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.SetupRequired("database", "Set STORE_URL and STORE_SERVICE_KEY to connect the events database."))
				return
			}

			log.Error("failed to list events", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get events"))
			return
		}

		log.Info("events retrieved", slog.Int("count", len(events)))

		if events == nil {
			events = []models.Event{}
		}

		render.JSON(w, r, events)
	}
}

func parseFilter(r *http.Request) (models.EventFilter, error) {
	q := r.URL.Query()

	filter := models.EventFilter{Query: q.Get("q")}

	if v := q.Get("from"); v != "" {
		from, err := ParseBound(v, false)
		if err != nil {
			return filter, fmt.Errorf("invalid from date: %s", v)
		}
		filter.From = &from
	}

	if v := q.Get("to"); v != "" {
		to, err := ParseBound(v, true)
		if err != nil {
			return filter, fmt.Errorf("invalid to date: %s", v)
		}
		filter.To = &to
	}

	return filter, nil
}

// ParseBound accepts RFC3339 or YYYY-MM-DD. A bare date used as an upper
// bound covers the whole day, down to the microsecond postgres can store.
func ParseBound(v string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, err
	}

	if upper {
		t = t.Add(24*time.Hour - time.Microsecond)
	}

	return t, nil
}
