package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventsBooking/internal/config"
	"eventsBooking/internal/models"
	"eventsBooking/internal/storage"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type Storage struct {
	db       *sql.DB
	setupErr error
}

// New opens the connection pool. When the store credentials are missing it
// returns a usable Storage whose every call fails with config.ErrNotConfigured,
// together with that error, so the caller can keep serving setup hints.
func New(ctx context.Context, cfg config.Store) (*Storage, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		if errors.Is(err, config.ErrNotConfigured) {
			return &Storage{setupErr: err}, err
		}
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return &Storage{db: db}, nil
}

func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) conn() (*sql.DB, error) {
	if s.db == nil {
		if s.setupErr != nil {
			return nil, s.setupErr
		}
		return nil, config.ErrNotConfigured
	}
	return s.db, nil
}

func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}

const eventColumns = `id, organizer_id, venue_id, title, slug, summary, description_md, category,
	tags, image_url, start_at, end_at, timezone, status, sales_start_at, sales_end_at,
	created_at, updated_at`

const ticketColumns = `id, event_id, name, price_cents, currency, inventory, per_user_limit, is_active, sort_order`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID,
		&e.OrganizerID,
		&e.VenueID,
		&e.Title,
		&e.Slug,
		&e.Summary,
		&e.DescriptionMD,
		&e.Category,
		pq.Array(&e.Tags),
		&e.ImageURL,
		&e.StartAt,
		&e.EndAt,
		&e.Timezone,
		&e.Status,
		&e.SalesStartAt,
		&e.SalesEndAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func scanTicket(row scanner) (models.TicketType, error) {
	var t models.TicketType
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.Name,
		&t.PriceCents,
		&t.Currency,
		&t.Inventory,
		&t.PerUserLimit,
		&t.IsActive,
		&t.SortOrder,
	)
	t.Currency = strings.TrimSpace(t.Currency)
	return t, err
}

func (s *Storage) ListEvents(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT " + eventColumns + " FROM events WHERE status = 'published'")

	args := make([]any, 0, 3)
	if f.Query != "" {
		args = append(args, "%"+escapeLike(f.Query)+"%")
		fmt.Fprintf(&b, " AND title ILIKE $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		fmt.Fprintf(&b, " AND start_at >= $%d", len(args))
	}
	if f.To != nil {
		// timestamptz rounds sub-microsecond input up, past the bound.
		args = append(args, f.To.Truncate(time.Microsecond))
		fmt.Fprintf(&b, " AND start_at <= $%d", len(args))
	}
	b.WriteString(" ORDER BY start_at ASC")

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

func (s *Storage) GetEvent(ctx context.Context, id uuid.UUID) (*models.EventDetails, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	event, err := scanEvent(db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	details := &models.EventDetails{Event: event}

	if event.VenueID != nil {
		venue, err := s.getVenue(ctx, db, *event.VenueID)
		if err != nil {
			return nil, err
		}
		details.Venue = venue
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+ticketColumns+`
		FROM ticket_types
		WHERE event_id = $1 AND is_active = true
		ORDER BY sort_order ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket types: %w", err)
	}
	defer rows.Close()

	details.Tickets = make([]models.TicketType, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket type: %w", err)
		}
		details.Tickets = append(details.Tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket types: %w", err)
	}

	return details, nil
}

func (s *Storage) getVenue(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.Venue, error) {
	var v models.Venue
	err := db.QueryRowContext(ctx, `
		SELECT id, name, address, city, geo_lat, geo_lng, capacity, created_at
		FROM venues
		WHERE id = $1`, id).Scan(
		&v.ID,
		&v.Name,
		&v.Address,
		&v.City,
		&v.GeoLat,
		&v.GeoLng,
		&v.Capacity,
		&v.CreatedAt,
	)
	if err != nil {
		// a dangling venue reference should not hide the event
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	return &v, nil
}

// GetTicketTypes fetches ticket types by id in one round trip. Ids that do
// not resolve are simply absent from the result.
func (s *Storage) GetTicketTypes(ctx context.Context, ids []uuid.UUID) ([]models.TicketType, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	strIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		strIDs = append(strIDs, id.String())
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+ticketColumns+`
		FROM ticket_types
		WHERE id = ANY($1::uuid[])`, pq.Array(strIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket types: %w", err)
	}
	defer rows.Close()

	tickets := make([]models.TicketType, 0, len(ids))
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket type: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket types: %w", err)
	}

	return tickets, nil
}

// CreatePendingBooking inserts the booking and its line items atomically.
func (s *Storage) CreatePendingBooking(ctx context.Context, b models.Booking, items []models.BookingItem) (uuid.UUID, error) {
	db, err := s.conn()
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings (user_id, event_id, total_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		b.UserID, b.EventID, b.TotalCents, b.Currency, models.BookingStatusPending,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create booking: %w", err)
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO booking_items (booking_id, ticket_type_id, qty, unit_price_cents)
			VALUES ($1, $2, $3, $4)`,
			id, item.TicketTypeID, item.Qty, item.UnitPriceCents,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to create booking item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	return id, nil
}

// MarkBookingPaid moves a pending booking to paid and records the payment.
// A booking that is already paid yields storage.ErrAlreadyPaid without writing,
// and a repeated payment intent id never produces a second payment row.
func (s *Storage) MarkBookingPaid(ctx context.Context, bookingID uuid.UUID, p models.Payment) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status models.BookingStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, bookingID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrBookingNotFound
		}
		return fmt.Errorf("failed to check booking: %w", err)
	}

	switch status {
	case models.BookingStatusPending:
	case models.BookingStatusPaid:
		return storage.ErrAlreadyPaid
	default:
		return fmt.Errorf("%w: %s", storage.ErrBookingNotPending, status)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1`, bookingID, models.BookingStatusPaid)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (booking_id, stripe_payment_intent_id, status, amount_cents, receipt_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (stripe_payment_intent_id) DO NOTHING`,
		bookingID, p.StripePaymentIntentID, p.Status, p.AmountCents, p.ReceiptURL,
	)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	return tx.Commit()
}

// ExpirePendingBookings marks pending bookings older than ttl as expired.
func (s *Storage) ExpirePendingBookings(ctx context.Context, ttl time.Duration) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE status = $2
		AND created_at < NOW() - make_interval(secs => $3)`,
		models.BookingStatusExpired, models.BookingStatusPending, ttl.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending bookings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired bookings: %w", err)
	}

	return rowsAffected, nil
}

// CreateEvent inserts an event with its ticket types.
func (s *Storage) CreateEvent(ctx context.Context, e models.Event, tickets []models.TicketType) (uuid.UUID, error) {
	db, err := s.conn()
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO events (organizer_id, venue_id, title, slug, summary, description_md, category,
			tags, image_url, start_at, end_at, timezone, status, sales_start_at, sales_end_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		e.OrganizerID, e.VenueID, e.Title, e.Slug, e.Summary, e.DescriptionMD, e.Category,
		pq.Array(e.Tags), e.ImageURL, e.StartAt, e.EndAt, e.Timezone, e.Status, e.SalesStartAt, e.SalesEndAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create event: %w", err)
	}

	for _, t := range tickets {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ticket_types (event_id, name, price_cents, currency, inventory, per_user_limit, is_active, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, t.Name, t.PriceCents, t.Currency, t.Inventory, t.PerUserLimit, t.IsActive, t.SortOrder,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to create ticket type: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit event: %w", err)
	}

	return id, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
