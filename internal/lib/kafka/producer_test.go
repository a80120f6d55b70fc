package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"eventsBooking/internal/lib/logger/handlers/slogdiscard"
	"eventsBooking/internal/models"

	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishBookingPaid(t *testing.T) {
	t.Parallel()

	event := models.BookingPaid{
		BookingID:       uuid.New(),
		AmountCents:     5000,
		Currency:        "usd",
		PaymentIntentID: "pi_1",
		PaidAt:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got models.BookingPaid
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.BookingID != event.BookingID || got.AmountCents != 5000 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := New(sp, "bookings.paid", slogdiscard.NewDiscardLogger())
	require.NoError(t, p.PublishBookingPaid(context.Background(), event))
	require.NoError(t, p.Close())
}

func TestPublishBookingPaidFails(t *testing.T) {
	t.Parallel()

	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(errors.New("broker unavailable"))

	p := New(sp, "bookings.paid", slogdiscard.NewDiscardLogger())
	err := p.PublishBookingPaid(context.Background(), models.BookingPaid{BookingID: uuid.New()})
	assert.ErrorContains(t, err, "broker unavailable")
	require.NoError(t, p.Close())
}
