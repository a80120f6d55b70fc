package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"eventsBooking/internal/config"
	"eventsBooking/internal/models"
	"eventsBooking/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventColumnNames = []string{
	"id", "organizer_id", "venue_id", "title", "slug", "summary", "description_md", "category",
	"tags", "image_url", "start_at", "end_at", "timezone", "status", "sales_start_at", "sales_end_at",
	"created_at", "updated_at",
}

var ticketColumnNames = []string{
	"id", "event_id", "name", "price_cents", "currency", "inventory", "per_user_limit", "is_active", "sort_order",
}

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewWithDB(db), mock
}

func eventRow(rows *sqlmock.Rows, id uuid.UUID, title string, start time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id.String(), nil, nil, title, "slug-"+id.String()[:8], "summary", nil, "music",
		"{jazz,live}", nil, start, start.Add(2*time.Hour), "UTC", "published", nil, nil,
		start.Add(-24*time.Hour), start.Add(-24*time.Hour),
	)
}

func TestListEvents(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 23, 59, 59, 999999000, time.UTC)
	toNanos := time.Date(2025, 12, 31, 23, 59, 59, 999999999, time.UTC)
	first := uuid.New()
	second := uuid.New()

	testCases := []struct {
		name          string
		filter        models.EventFilter
		expectedQuery string
		expectedArgs  []driver.Value
	}{
		{
			name:          "No filters",
			filter:        models.EventFilter{},
			expectedQuery: `FROM events WHERE status = 'published' ORDER BY start_at ASC`,
		},
		{
			name:          "Text and date range",
			filter:        models.EventFilter{Query: "Jazz", From: &from, To: &to},
			expectedQuery: `FROM events WHERE status = 'published' AND title ILIKE $1 AND start_at >= $2 AND start_at <= $3 ORDER BY start_at ASC`,
			expectedArgs:  []driver.Value{"%Jazz%", from, to},
		},
		{
			name:          "Only upper bound",
			filter:        models.EventFilter{To: &to},
			expectedQuery: `FROM events WHERE status = 'published' AND start_at <= $1 ORDER BY start_at ASC`,
			expectedArgs:  []driver.Value{to},
		},
		{
			name:          "Upper bound truncated to microseconds",
			filter:        models.EventFilter{To: &toNanos},
			expectedQuery: `AND start_at <= $1`,
			expectedArgs:  []driver.Value{to},
		},
		{
			name:          "Wildcards in query are literal",
			filter:        models.EventFilter{Query: "100%_off"},
			expectedQuery: `AND title ILIKE $1`,
			expectedArgs:  []driver.Value{`%100\%\_off%`},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, mock := newMockStorage(t)

			rows := sqlmock.NewRows(eventColumnNames)
			eventRow(rows, first, "Jazz Night", from.Add(48*time.Hour))
			eventRow(rows, second, "Late Jazz", from.Add(72*time.Hour))

			expect := mock.ExpectQuery(regexp.QuoteMeta(tc.expectedQuery))
			if len(tc.expectedArgs) > 0 {
				expect = expect.WithArgs(tc.expectedArgs...)
			}
			expect.WillReturnRows(rows)

			events, err := s.ListEvents(context.Background(), tc.filter)
			require.NoError(t, err)
			require.Len(t, events, 2)

			assert.Equal(t, first, events[0].ID)
			assert.Equal(t, "Jazz Night", events[0].Title)
			assert.Equal(t, []string{"jazz", "live"}, events[0].Tags)
			assert.Equal(t, models.EventStatusPublished, events[0].Status)
			assert.Nil(t, events[0].OrganizerID)
			require.NotNil(t, events[0].Summary)
			assert.Equal(t, "summary", *events[0].Summary)
			assert.Equal(t, second, events[1].ID)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListEventsEmpty(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	mock.ExpectQuery("FROM events").WillReturnRows(sqlmock.NewRows(eventColumnNames))

	events, err := s.ListEvents(context.Background(), models.EventFilter{Query: "nothing"})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestListEventsQueryError(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	mock.ExpectQuery("FROM events").WillReturnError(errors.New("connection reset"))

	_, err := s.ListEvents(context.Background(), models.EventFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get events")
}

func TestGetEvent(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	eventID := uuid.New()
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE id = $1")).
		WithArgs(eventID).
		WillReturnRows(eventRow(sqlmock.NewRows(eventColumnNames), eventID, "Jazz Night", start))

	ticketRows := sqlmock.NewRows(ticketColumnNames).
		AddRow(uuid.New().String(), eventID.String(), "General", int64(2500), "usd", 100, 4, true, 0).
		AddRow(uuid.New().String(), eventID.String(), "VIP", int64(9000), "usd", 10, 2, true, 1)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE event_id = $1 AND is_active = true")).
		WithArgs(eventID).
		WillReturnRows(ticketRows)

	details, err := s.GetEvent(context.Background(), eventID)
	require.NoError(t, err)

	assert.Equal(t, eventID, details.Event.ID)
	assert.Nil(t, details.Venue)
	require.Len(t, details.Tickets, 2)
	assert.Equal(t, "General", details.Tickets[0].Name)
	assert.Equal(t, int64(2500), details.Tickets[0].PriceCents)
	assert.True(t, details.Tickets[1].IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEventWithVenue(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	eventID := uuid.New()
	venueID := uuid.New()
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(eventColumnNames).AddRow(
		eventID.String(), nil, venueID.String(), "Jazz Night", "jazz-night", nil, nil, nil,
		nil, nil, start, start.Add(time.Hour), "UTC", "published", nil, nil, start, start,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE id = $1")).WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM venues")).
		WithArgs(venueID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "city", "geo_lat", "geo_lng", "capacity", "created_at"}).
			AddRow(venueID.String(), "Blue Room", nil, "Lisbon", 38.7, -9.1, 300, start))
	mock.ExpectQuery("FROM ticket_types").WillReturnRows(sqlmock.NewRows(ticketColumnNames))

	details, err := s.GetEvent(context.Background(), eventID)
	require.NoError(t, err)

	require.NotNil(t, details.Venue)
	assert.Equal(t, "Blue Room", details.Venue.Name)
	require.NotNil(t, details.Venue.Capacity)
	assert.Equal(t, 300, *details.Venue.Capacity)
	assert.Empty(t, details.Event.Tags)
	assert.NotNil(t, details.Tickets)
	assert.Empty(t, details.Tickets)
}

func TestGetEventNotFound(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	mock.ExpectQuery("FROM events").WillReturnError(sql.ErrNoRows)

	_, err := s.GetEvent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrEventNotFound)
}

func TestGetTicketTypes(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	eventID := uuid.New()
	known := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($1::uuid[])")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(ticketColumnNames).
			AddRow(known.String(), eventID.String(), "General", int64(2500), "usd", 100, 4, true, 0))

	tickets, err := s.GetTicketTypes(context.Background(), []uuid.UUID{known, uuid.New()})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, known, tickets[0].ID)
	assert.Equal(t, "usd", tickets[0].Currency)
}

func TestCreatePendingBooking(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	eventID := uuid.New()
	ticketID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(nil, eventID, int64(5000), "usd", models.BookingStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookingID.String()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_items")).
		WithArgs(bookingID, ticketID, 2, int64(2500)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := s.CreatePendingBooking(context.Background(), models.Booking{
		EventID:    eventID,
		TotalCents: 5000,
		Currency:   "usd",
	}, []models.BookingItem{{TicketTypeID: ticketID, Qty: 2, UnitPriceCents: 2500}})
	require.NoError(t, err)
	assert.Equal(t, bookingID, id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingBookingInsertFails(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO bookings").WillReturnError(errors.New("violates foreign key"))
	mock.ExpectRollback()

	_, err := s.CreatePendingBooking(context.Background(), models.Booking{EventID: uuid.New()}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create booking")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkBookingPaid(t *testing.T) {
	t.Parallel()

	bookingID := uuid.New()
	intent := "pi_123"
	payment := models.Payment{StripePaymentIntentID: &intent, Status: models.PaymentStatusPaid, AmountCents: 5000}

	testCases := []struct {
		name      string
		setup     func(mock sqlmock.Sqlmock)
		expectErr error
	}{
		{
			name: "Pending booking becomes paid",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM bookings WHERE id = $1 FOR UPDATE")).
					WithArgs(bookingID).
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
				mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
					WithArgs(bookingID, models.BookingStatusPaid).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (stripe_payment_intent_id) DO NOTHING")).
					WithArgs(bookingID, &intent, models.PaymentStatusPaid, int64(5000), nil).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "Redelivery for paid booking writes nothing",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT status FROM bookings").
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("paid"))
				mock.ExpectRollback()
			},
			expectErr: storage.ErrAlreadyPaid,
		},
		{
			name: "Expired booking is left alone",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT status FROM bookings").
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("expired"))
				mock.ExpectRollback()
			},
			expectErr: storage.ErrBookingNotPending,
		},
		{
			name: "Unknown booking",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT status FROM bookings").WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			expectErr: storage.ErrBookingNotFound,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, mock := newMockStorage(t)
			tc.setup(mock)

			err := s.MarkBookingPaid(context.Background(), bookingID, payment)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExpirePendingBookings(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	mock.ExpectExec(regexp.QuoteMeta("make_interval(secs => $3)")).
		WithArgs(models.BookingStatusExpired, models.BookingStatusPending, float64(1800)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.ExpirePendingBookings(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCreateEvent(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	eventID := uuid.New()
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO events")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(eventID.String()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ticket_types")).
		WithArgs(eventID, "General", int64(2500), "usd", 100, 4, true, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := s.CreateEvent(context.Background(), models.Event{
		Title:    "Jazz Night",
		Slug:     "jazz-night",
		StartAt:  start,
		EndAt:    start.Add(2 * time.Hour),
		Timezone: "UTC",
		Status:   models.EventStatusPublished,
	}, []models.TicketType{{Name: "General", PriceCents: 2500, Currency: "usd", Inventory: 100, PerUserLimit: 4, IsActive: true}})
	require.NoError(t, err)
	assert.Equal(t, eventID, id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnconfiguredStorage(t *testing.T) {
	t.Parallel()

	s, err := New(context.Background(), config.Store{})
	require.ErrorIs(t, err, config.ErrNotConfigured)
	require.NotNil(t, s)

	_, err = s.ListEvents(context.Background(), models.EventFilter{})
	assert.ErrorIs(t, err, config.ErrNotConfigured)

	_, err = s.GetEvent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, config.ErrNotConfigured)

	err = s.MarkBookingPaid(context.Background(), uuid.New(), models.Payment{})
	assert.ErrorIs(t, err, config.ErrNotConfigured)

	assert.NoError(t, s.Close())
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `jazz`, escapeLike("jazz"))
	assert.Equal(t, `50\% \_off \\o/`, escapeLike(`50% _off \o/`))
}
