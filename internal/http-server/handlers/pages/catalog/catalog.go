package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eventsBooking/internal/lib/logger/sl"
	"eventsBooking/internal/models"
	"eventsBooking/internal/web"

	"github.com/go-chi/chi/v5/middleware"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventsLister
type EventsLister interface {
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

// New renders the home page. The catalog lookup is bounded by timeout; any
// failure degrades to the empty state instead of an error page.
func New(log *slog.Logger, lister EventsLister, renderer *web.Renderer, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pages.catalog.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		data := web.CatalogData{}

		events, err := lister.ListEvents(ctx, models.EventFilter{})
		if err != nil {
			log.Error("failed to load catalog", sl.Err(err))
			data.SetupHint = true
		} else {
			data.Events = events
		}

		if err = renderer.Render(w, http.StatusOK, web.PageCatalog, data); err != nil {
			log.Error("failed to render page", sl.Err(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
