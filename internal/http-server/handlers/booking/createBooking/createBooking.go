package createBooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventsBooking/internal/booking"
	"eventsBooking/internal/config"
	"eventsBooking/internal/http-server/middleware/mwauth"
	"eventsBooking/internal/lib/api/response"
	"eventsBooking/internal/lib/logger/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ItemRequest struct {
	TicketTypeID string `json:"ticketTypeId" validate:"required,uuid"`
	Qty          int    `json:"qty" validate:"gt=0,lte=1000"`
}

type BookingRequest struct {
	EventID string        `json:"eventId" validate:"required,uuid"`
	UserID  *string       `json:"userId" validate:"omitempty,uuid"`
	Items   []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

type BookingResponse struct {
	response.Response
	CheckoutURL string `json:"checkoutUrl"`
	BookingID   string `json:"bookingId"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCreator
type BookingCreator interface {
	Create(ctx context.Context, req booking.Request) (*booking.Result, error)
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.createBooking.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req BookingRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		log.Info("request body decoded", slog.String("event_id", req.EventID), slog.Int("items", len(req.Items)))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		bookingReq := toBookingRequest(req)

		// A verified bearer token wins over the self-declared body value.
		if uid, ok := mwauth.UserID(r.Context()); ok {
			bookingReq.UserID = &uid
		}

		res, err := creator.Create(r.Context(), bookingReq)
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrInvalidTickets):
				log.Info("invalid ticket selection", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid tickets"))
			case errors.Is(err, config.ErrNotConfigured):
				log.Warn("booking backend not configured", sl.Err(err))
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.SetupRequired("payments", "Set STORE_URL and STRIPE_SECRET_KEY to accept bookings."))
			default:
				log.Error("failed to create booking", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to create booking"))
			}
			return
		}

		log.Info("booking created", slog.String("booking_id", res.BookingID.String()))

		responseOK(w, r, res)
	}
}

// toBookingRequest expects a validated request.
func toBookingRequest(req BookingRequest) booking.Request {
	out := booking.Request{
		EventID: uuid.MustParse(req.EventID),
		Items:   make([]booking.Item, 0, len(req.Items)),
	}

	if req.UserID != nil {
		uid := uuid.MustParse(*req.UserID)
		out.UserID = &uid
	}

	for _, it := range req.Items {
		out.Items = append(out.Items, booking.Item{
			TicketTypeID: uuid.MustParse(it.TicketTypeID),
			Qty:          it.Qty,
		})
	}

	return out
}

func responseOK(w http.ResponseWriter, r *http.Request, res *booking.Result) {
	render.JSON(w, r, BookingResponse{
		Response:    response.OK(),
		CheckoutURL: res.CheckoutURL,
		BookingID:   res.BookingID.String(),
	})
}
