// Package events publishes appointment lifecycle events for downstream
// consumers (reminder sweeps, analytics). Publishing is best-effort and
// happens after the owning transaction commits; the booking itself never
// fails because a broker is down.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	TypeAppointmentConfirmed   = "appointment.confirmed"
	TypeAppointmentCancelled   = "appointment.cancelled"
	TypeAppointmentRescheduled = "appointment.rescheduled"
)

// Event is the wire payload for a lifecycle change.
type Event struct {
	Type          string    `json:"type"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	BranchID      uuid.UUID `json:"branch_id"`
	StartDatetime time.Time `json:"start_datetime"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher emits lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
	Close() error
}

// Kafka publishes events to a single topic, keyed by appointment ID so all
// events for one appointment land on the same partition in order.
type Kafka struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewKafka(brokers []string, topic string, logger zerolog.Logger) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
		logger: logger,
	}
}

func (k *Kafka) Publish(ctx context.Context, evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		k.logger.Error().Err(err).Str("type", evt.Type).Msg("marshal event")
		return
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.AppointmentID.String()),
		Value: payload,
	})
	if err != nil {
		k.logger.Error().Err(err).
			Str("type", evt.Type).
			Str("appointment_id", evt.AppointmentID.String()).
			Msg("publish event")
	}
}

func (k *Kafka) Close() error { return k.writer.Close() }

// Noop discards events. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
func (Noop) Close() error                   { return nil }
