// Package booking turns a ticket selection into a pending booking with a
// hosted checkout, and settles it when the provider reports payment.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventsBooking/internal/lib/logger/sl"
	"eventsBooking/internal/lib/metrics"
	"eventsBooking/internal/lib/money"
	"eventsBooking/internal/models"
	"eventsBooking/internal/payment"
	"eventsBooking/internal/storage"

	"github.com/google/uuid"
)

var ErrInvalidTickets = errors.New("invalid tickets")

const releaseTimeout = 5 * time.Second

// MaxQty caps a single ticket line after merging.
const MaxQty = 1000

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Store
type Store interface {
	GetTicketTypes(ctx context.Context, ids []uuid.UUID) ([]models.TicketType, error)
	CreatePendingBooking(ctx context.Context, b models.Booking, items []models.BookingItem) (uuid.UUID, error)
	MarkBookingPaid(ctx context.Context, bookingID uuid.UUID, p models.Payment) error
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CheckoutCreator
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Deduplicator
type Deduplicator interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Publisher
type Publisher interface {
	PublishBookingPaid(ctx context.Context, event models.BookingPaid) error
}

type Item struct {
	TicketTypeID uuid.UUID
	Qty          int
}

type Request struct {
	EventID uuid.UUID
	UserID  *uuid.UUID
	Items   []Item
}

type Result struct {
	BookingID   uuid.UUID
	CheckoutURL string
}

type Service struct {
	log       *slog.Logger
	store     Store
	checkout  CheckoutCreator
	dedup     Deduplicator
	publisher Publisher
	appURL    string
	now       func() time.Time
}

func New(
	log *slog.Logger,
	store Store,
	checkout CheckoutCreator,
	dedup Deduplicator,
	publisher Publisher,
	appURL string,
) *Service {
	return &Service{
		log:       log,
		store:     store,
		checkout:  checkout,
		dedup:     dedup,
		publisher: publisher,
		appURL:    strings.TrimRight(appURL, "/"),
		now:       time.Now,
	}
}

// Create prices the selection from stored ticket types, persists a pending
// booking and opens a checkout session for it.
func (s *Service) Create(ctx context.Context, req Request) (*Result, error) {
	const op = "booking.Service.Create"

	log := s.log.With(slog.String("op", op), slog.String("event_id", req.EventID.String()))

	items, err := mergeItems(req.Items)
	if err != nil {
		metrics.TrackBooking("invalid")
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.TicketTypeID)
	}

	tickets, err := s.store.GetTicketTypes(ctx, ids)
	if err != nil {
		metrics.TrackBooking("error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	priced, currency, err := priceItems(req.EventID, items, tickets)
	if err != nil {
		metrics.TrackBooking("invalid")
		return nil, err
	}

	bookingItems := priced.bookingItems()
	total := Total(bookingItems)

	bookingID, err := s.store.CreatePendingBooking(ctx, models.Booking{
		UserID:     req.UserID,
		EventID:    req.EventID,
		TotalCents: total,
		Currency:   currency,
		Status:     models.BookingStatusPending,
	}, bookingItems)
	if err != nil {
		metrics.TrackBooking("error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("booking_id", bookingID.String()))
	log.Info("pending booking created", slog.Int64("total_cents", total), slog.String("currency", currency))

	session, err := s.checkout.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		BookingID:  bookingID,
		LineItems:  priced.lineItems(),
		SuccessURL: fmt.Sprintf("%s/success?booking=%s", s.appURL, bookingID),
		CancelURL:  fmt.Sprintf("%s/events/%s", s.appURL, req.EventID),
	})
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		metrics.TrackBooking("checkout_error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.TrackBooking("created")

	return &Result{BookingID: bookingID, CheckoutURL: session.URL}, nil
}

// ConfirmPayment settles the booking referenced by a checkout completion.
// Redeliveries and notifications for bookings that can never be settled are
// acknowledged with a nil error; only failures worth a provider retry are returned.
func (s *Service) ConfirmPayment(ctx context.Context, n *payment.Notification) error {
	const op = "booking.Service.ConfirmPayment"

	log := s.log.With(slog.String("op", op), slog.String("notification_id", n.ID), slog.String("type", n.Type))

	c := n.CheckoutCompleted
	if c == nil {
		log.Debug("notification ignored")
		return nil
	}

	log = log.With(slog.String("booking_id", c.BookingID.String()))

	claimed, err := s.dedup.Claim(ctx, n.ID)
	if err != nil {
		log.Warn("dedup unavailable, relying on booking state", sl.Err(err))
		claimed = true
	}
	if !claimed {
		log.Info("duplicate notification")
		metrics.TrackPayment("duplicate")
		return nil
	}

	p := models.Payment{
		BookingID:   c.BookingID,
		Status:      models.PaymentStatusPaid,
		AmountCents: c.AmountTotal,
	}
	if c.PaymentIntentID != "" {
		p.StripePaymentIntentID = &c.PaymentIntentID
	}

	err = s.store.MarkBookingPaid(ctx, c.BookingID, p)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrAlreadyPaid):
		log.Info("booking already paid")
		metrics.TrackPayment("duplicate")
		return nil
	case errors.Is(err, storage.ErrBookingNotFound):
		log.Error("notification references unknown booking")
		metrics.TrackPayment("unknown_booking")
		return nil
	case errors.Is(err, storage.ErrBookingNotPending):
		log.Warn("booking cannot be paid", sl.Err(err))
		metrics.TrackPayment("not_pending")
		return nil
	default:
		// ctx is often the reason the store failed; the claim must still go.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		relErr := s.dedup.Release(relCtx, n.ID)
		cancel()
		if relErr != nil {
			log.Warn("failed to release dedup claim", sl.Err(relErr))
		}
		metrics.TrackPayment("error")
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking paid", slog.Int64("amount_cents", c.AmountTotal))
	metrics.TrackPayment("paid")

	err = s.publisher.PublishBookingPaid(ctx, models.BookingPaid{
		BookingID:       c.BookingID,
		AmountCents:     c.AmountTotal,
		Currency:        c.Currency,
		PaymentIntentID: c.PaymentIntentID,
		PaidAt:          s.now().UTC(),
	})
	if err != nil {
		log.Error("failed to publish booking paid", sl.Err(err))
	}

	return nil
}

type pricedItem struct {
	ticket models.TicketType
	qty    int
}

type pricedItems []pricedItem

func (p pricedItems) bookingItems() []models.BookingItem {
	out := make([]models.BookingItem, 0, len(p))
	for _, it := range p {
		out = append(out, models.BookingItem{
			TicketTypeID:   it.ticket.ID,
			Qty:            it.qty,
			UnitPriceCents: it.ticket.PriceCents,
		})
	}
	return out
}

func (p pricedItems) lineItems() []payment.LineItem {
	out := make([]payment.LineItem, 0, len(p))
	for _, it := range p {
		out = append(out, payment.LineItem{
			Name:           it.ticket.Name,
			Currency:       strings.ToLower(it.ticket.Currency),
			UnitPriceCents: it.ticket.PriceCents,
			Quantity:       int64(it.qty),
		})
	}
	return out
}

// Total is the sum of unit price times quantity over all items.
func Total(items []models.BookingItem) int64 {
	prices := make([]int64, 0, len(items))
	qty := make([]int, 0, len(items))
	for _, it := range items {
		prices = append(prices, it.UnitPriceCents)
		qty = append(qty, it.Qty)
	}
	return money.Sum(prices, qty)
}

// mergeItems sums quantities of repeated ticket ids, keeping first-seen order.
func mergeItems(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no tickets selected", ErrInvalidTickets)
	}

	idx := make(map[uuid.UUID]int, len(items))
	merged := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Qty <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidTickets)
		}
		i, ok := idx[it.TicketTypeID]
		if ok {
			merged[i].Qty += it.Qty
		} else {
			i = len(merged)
			idx[it.TicketTypeID] = i
			merged = append(merged, it)
		}
		if merged[i].Qty > MaxQty {
			return nil, fmt.Errorf("%w: at most %d tickets per type", ErrInvalidTickets, MaxQty)
		}
	}

	return merged, nil
}

func priceItems(eventID uuid.UUID, items []Item, tickets []models.TicketType) (pricedItems, string, error) {
	if len(tickets) == 0 {
		return nil, "", fmt.Errorf("%w: no matching ticket types", ErrInvalidTickets)
	}

	byID := make(map[uuid.UUID]models.TicketType, len(tickets))
	for _, t := range tickets {
		byID[t.ID] = t
	}

	var currency string
	priced := make(pricedItems, 0, len(items))
	for _, it := range items {
		t, ok := byID[it.TicketTypeID]
		switch {
		case !ok:
			return nil, "", fmt.Errorf("%w: unknown ticket type %s", ErrInvalidTickets, it.TicketTypeID)
		case t.EventID != eventID:
			return nil, "", fmt.Errorf("%w: ticket type %s belongs to another event", ErrInvalidTickets, t.ID)
		case !t.IsActive:
			return nil, "", fmt.Errorf("%w: ticket type %s is not on sale", ErrInvalidTickets, t.ID)
		}

		if currency == "" {
			currency = strings.ToLower(t.Currency)
		} else if !strings.EqualFold(currency, t.Currency) {
			return nil, "", fmt.Errorf("%w: mixed currencies", ErrInvalidTickets)
		}

		priced = append(priced, pricedItem{ticket: t, qty: it.Qty})
	}

	return priced, currency, nil
}
