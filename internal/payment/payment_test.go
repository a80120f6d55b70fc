package payment_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"eventsBooking/internal/config"
	"eventsBooking/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

const webhookSecret = "whsec_test_secret"

func newProvider(t *testing.T, handler http.HandlerFunc) *payment.Provider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return payment.NewWithBackend(config.Stripe{
		SecretKey:     "sk_test_123",
		WebhookSecret: webhookSecret,
	}, backend)
}

func TestCreateCheckoutSession(t *testing.T) {
	t.Parallel()

	bookingID := uuid.New()
	forms := make(chan url.Values, 1)

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		forms <- form

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.test/pay/cs_test_1"}`))
	})

	s, err := p.CreateCheckoutSession(context.Background(), payment.CheckoutRequest{
		BookingID: bookingID,
		LineItems: []payment.LineItem{
			{Name: "General Admission", Currency: "usd", UnitPriceCents: 2500, Quantity: 2},
		},
		SuccessURL: "http://localhost:8082/success?booking=" + bookingID.String(),
		CancelURL:  "http://localhost:8082/events/abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, "https://checkout.stripe.test/pay/cs_test_1", s.URL)

	form := <-forms
	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, bookingID.String(), form.Get("metadata[booking_id]"))
	assert.Equal(t, bookingID.String(), form.Get("client_reference_id"))
	assert.Equal(t, "http://localhost:8082/success?booking="+bookingID.String(), form.Get("success_url"))
	assert.Equal(t, "http://localhost:8082/events/abc", form.Get("cancel_url"))
	assert.Equal(t, "2500", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "usd", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "General Admission", form.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
}

func TestCreateCheckoutSessionProviderError(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad currency"}}`))
	})

	_, err := p.CreateCheckoutSession(context.Background(), payment.CheckoutRequest{BookingID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create checkout session")
}

func TestCreateCheckoutSessionNotConfigured(t *testing.T) {
	t.Parallel()

	p := payment.New(config.Stripe{SecretKey: "your_stripe_secret_key"})

	_, err := p.CreateCheckoutSession(context.Background(), payment.CheckoutRequest{BookingID: uuid.New()})
	assert.ErrorIs(t, err, config.ErrNotConfigured)
}

func completedEvent(t *testing.T, bookingID string) []byte {
	t.Helper()

	obj := map[string]any{
		"id":             "cs_test_1",
		"object":         "checkout.session",
		"amount_total":   5000,
		"currency":       "usd",
		"payment_intent": "pi_test_1",
		"metadata":       map[string]string{},
	}
	if bookingID != "" {
		obj["metadata"] = map[string]string{"booking_id": bookingID}
	}

	payload, err := json.Marshal(map[string]any{
		"id":          "evt_test_1",
		"object":      "event",
		"type":        "checkout.session.completed",
		"api_version": stripe.APIVersion,
		"data":        map[string]any{"object": obj},
	})
	require.NoError(t, err)

	return payload
}

func TestParseNotification(t *testing.T) {
	t.Parallel()

	p := payment.New(config.Stripe{SecretKey: "sk_test_123", WebhookSecret: webhookSecret})
	bookingID := uuid.New()

	t.Run("checkout completed", func(t *testing.T) {
		t.Parallel()

		payload := completedEvent(t, bookingID.String())
		n, err := p.ParseNotification(payload, payment.SignForTest(payload, webhookSecret, time.Now()))
		require.NoError(t, err)

		assert.Equal(t, "evt_test_1", n.ID)
		assert.Equal(t, payment.TypeCheckoutCompleted, n.Type)
		require.NotNil(t, n.CheckoutCompleted)
		assert.Equal(t, bookingID, n.CheckoutCompleted.BookingID)
		assert.Equal(t, int64(5000), n.CheckoutCompleted.AmountTotal)
		assert.Equal(t, "usd", n.CheckoutCompleted.Currency)
		assert.Equal(t, "pi_test_1", n.CheckoutCompleted.PaymentIntentID)
		assert.Equal(t, "cs_test_1", n.CheckoutCompleted.SessionID)
	})

	t.Run("other event type", func(t *testing.T) {
		t.Parallel()

		payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{}}}`)
		n, err := p.ParseNotification(payload, payment.SignForTest(payload, webhookSecret, time.Now()))
		require.NoError(t, err)

		assert.Equal(t, "payment_intent.created", n.Type)
		assert.Nil(t, n.CheckoutCompleted)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()

		payload := completedEvent(t, bookingID.String())
		_, err := p.ParseNotification(payload, payment.SignForTest(payload, "whsec_other", time.Now()))
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	})

	t.Run("tampered body", func(t *testing.T) {
		t.Parallel()

		payload := completedEvent(t, bookingID.String())
		sig := payment.SignForTest(payload, webhookSecret, time.Now())
		tampered := append([]byte{}, payload...)
		tampered[len(tampered)-2] = ' '

		_, err := p.ParseNotification(tampered, sig)
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()

		_, err := p.ParseNotification(completedEvent(t, bookingID.String()), "")
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		t.Parallel()

		payload := completedEvent(t, bookingID.String())
		_, err := p.ParseNotification(payload, payment.SignForTest(payload, webhookSecret, time.Now().Add(-time.Hour)))
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	})

	t.Run("missing booking metadata", func(t *testing.T) {
		t.Parallel()

		payload := completedEvent(t, "")
		_, err := p.ParseNotification(payload, payment.SignForTest(payload, webhookSecret, time.Now()))
		assert.ErrorIs(t, err, payment.ErrMalformed)
	})
}

func TestParseNotificationNotConfigured(t *testing.T) {
	t.Parallel()

	p := payment.New(config.Stripe{SecretKey: "sk_test_123"})

	_, err := p.ParseNotification([]byte(`{}`), "t=1,v1=abc")
	assert.True(t, errors.Is(err, config.ErrNotConfigured))
}
