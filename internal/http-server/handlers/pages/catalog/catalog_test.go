package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventsBooking/internal/http-server/handlers/pages/catalog/mocks"
	"eventsBooking/internal/lib/logger/handlers/slogdiscard"
	"eventsBooking/internal/models"
	"eventsBooking/internal/web"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCatalogPage(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()
	renderer := web.MustNew()

	testCases := []struct {
		name      string
		mockSetup func(m *mocks.EventsLister)
		contains  []string
		missing   []string
	}{
		{
			name: "Lists events",
			mockSetup: func(m *mocks.EventsLister) {
				m.On("ListEvents", mock.Anything, models.EventFilter{}).Return([]models.Event{
					{ID: uuid.New(), Title: "Jazz Night", StartAt: time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)},
				}, nil)
			},
			contains: []string{"Jazz Night", "View Details"},
			missing:  []string{"No Events Found"},
		},
		{
			name: "Empty catalog",
			mockSetup: func(m *mocks.EventsLister) {
				m.On("ListEvents", mock.Anything, models.EventFilter{}).Return([]models.Event{}, nil)
			},
			contains: []string{"No Events Found"},
			missing:  []string{"STORE_URL"},
		},
		{
			name: "Store failure degrades to empty state",
			mockSetup: func(m *mocks.EventsLister) {
				m.On("ListEvents", mock.Anything, models.EventFilter{}).Return(nil, errors.New("connection refused"))
			},
			contains: []string{"No Events Found", "STORE_URL"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			lister := mocks.NewEventsLister(t)
			tc.mockSetup(lister)

			rr := httptest.NewRecorder()
			New(logger, lister, renderer, time.Second).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			for _, s := range tc.contains {
				assert.Contains(t, rr.Body.String(), s)
			}
			for _, s := range tc.missing {
				assert.NotContains(t, rr.Body.String(), s)
			}
		})
	}
}

func TestCatalogPageTimeout(t *testing.T) {
	t.Parallel()

	lister := mocks.NewEventsLister(t)
	lister.On("ListEvents", mock.Anything, models.EventFilter{}).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	start := time.Now()
	rr := httptest.NewRecorder()
	New(slogdiscard.NewDiscardLogger(), lister, web.MustNew(), 20*time.Millisecond).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No Events Found")
}
