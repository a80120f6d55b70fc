package paymentWebhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"eventsBooking/internal/config"
	"eventsBooking/internal/lib/api/response"
	"eventsBooking/internal/lib/logger/sl"
	"eventsBooking/internal/payment"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const (
	SignatureHeader = "Stripe-Signature"

	maxBodyBytes = 64 << 10
)

type AckResponse struct {
	Received bool `json:"received"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=NotificationParser
type NotificationParser interface {
	ParseNotification(payload []byte, signature string) (*payment.Notification, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=PaymentConfirmer
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, n *payment.Notification) error
}

// New authenticates provider notifications against the raw request body
// and hands checkout completions to the confirmer.
func New(log *slog.Logger, parser NotificationParser, confirmer PaymentConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.webhook.paymentWebhook.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			log.Error("failed to read body", sl.Err(err))
			http.Error(w, "Webhook Error: failed to read body", http.StatusBadRequest)
			return
		}

		n, err := parser.ParseNotification(payload, r.Header.Get(SignatureHeader))
		if err != nil {
			if errors.Is(err, config.ErrNotConfigured) {
				log.Warn("webhook secret not configured", sl.Err(err))
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.SetupRequired("payments", "Set STRIPE_WEBHOOK_SECRET to accept payment notifications."))
				return
			}

			if errors.Is(err, payment.ErrMalformed) {
				// Authentic but unusable; redelivery would never succeed.
				log.Error("dropping malformed notification", sl.Err(err))
				render.JSON(w, r, AckResponse{Received: true})
				return
			}

			log.Warn("rejected notification", sl.Err(err))
			http.Error(w, "Webhook Error: "+err.Error(), http.StatusBadRequest)
			return
		}

		log = log.With(slog.String("notification_id", n.ID), slog.String("type", n.Type))

		if err = confirmer.ConfirmPayment(r.Context(), n); err != nil {
			log.Error("failed to process notification", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to process notification"))
			return
		}

		log.Info("notification processed")

		render.JSON(w, r, AckResponse{Received: true})
	}
}
