// Package kafka publishes booking lifecycle events for downstream consumers
// (ticket delivery, analytics).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"eventsBooking/internal/config"
	"eventsBooking/internal/lib/logger/sl"
	"eventsBooking/internal/models"

	"github.com/IBM/sarama"
)

type Producer struct {
	producer sarama.SyncProducer
	topic    string
	log      *slog.Logger
}

func NewSyncProducer(cfg config.Kafka) (sarama.SyncProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	saramaCfg.Producer.Retry.Max = cfg.RetryMax
	saramaCfg.Producer.Return.Successes = true

	prod, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return prod, nil
}

func New(producer sarama.SyncProducer, topic string, log *slog.Logger) *Producer {
	return &Producer{producer: producer, topic: topic, log: log}
}

func (p *Producer) PublishBookingPaid(_ context.Context, event models.BookingPaid) error {
	const op = "kafka.PublishBookingPaid"

	log := p.log.With(slog.String("op", op), slog.String("booking_id", event.BookingID.String()))

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal event: %w", op, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.BookingID.String()),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte("booking.paid")},
			{Key: []byte("timestamp"), Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		log.Error("failed to send kafka message", sl.Err(err))
		return fmt.Errorf("%s: failed to send kafka message: %w", op, err)
	}

	log.Debug("kafka message sent", slog.Int("partition", int(partition)), slog.Int64("offset", offset))

	return nil
}

func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

// Noop drops events when no brokers are configured.
type Noop struct{}

func (Noop) PublishBookingPaid(context.Context, models.BookingPaid) error { return nil }
