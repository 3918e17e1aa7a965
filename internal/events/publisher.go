package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"innbook/pkg/logger"
	"innbook/pkg/model"
)

const (
	TypeCreated       = "reservation.created"
	TypeStatusChanged = "reservation.status_changed"
	TypeDeleted       = "reservation.deleted"

	headerEventID   = "event-id"
	headerEventType = "event-type"
	headerSource    = "source"
)

// ReservationEvent is the payload published on every lifecycle change.
type ReservationEvent struct {
	Type           string       `json:"type"`
	ReservationID  string       `json:"reservation_id"`
	GuestID        int64        `json:"guest_id"`
	RoomID         int64        `json:"room_id"`
	Status         model.Status `json:"status"`
	PreviousStatus model.Status `json:"previous_status,omitempty"`
	OccurredAt     time.Time    `json:"occurred_at"`
}

// Publisher emits reservation events to Kafka, keyed by room ID so events
// for one room stay ordered. Publishing is best-effort: failures are logged
// and never surfaced to the triggering operation. A nil Publisher no-ops,
// which is how deployments without brokers run.
type Publisher struct {
	writer *kafka.Writer
	log    *logger.Logger
	source string
}

func NewPublisher(log *logger.Logger, brokers []string, topic, source string) *Publisher {
	if len(brokers) == 0 {
		log.Info("Kafka brokers not configured, reservation events disabled")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}

	return &Publisher{
		writer: writer,
		log:    log,
		source: source,
	}
}

func (p *Publisher) Publish(ctx context.Context, event ReservationEvent) {
	if p == nil {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to encode reservation event",
			"type", event.Type,
			"reservation_id", event.ReservationID,
			"error", err,
		)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.RoomID, 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: headerEventID, Value: []byte(uuid.NewString())},
			{Key: headerEventType, Value: []byte(event.Type)},
			{Key: headerSource, Value: []byte(p.source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Failed to publish reservation event",
			"type", event.Type,
			"reservation_id", event.ReservationID,
			"error", err,
		)
		return
	}

	p.log.Debug("Reservation event published",
		"type", event.Type,
		"reservation_id", event.ReservationID,
		"room_id", event.RoomID,
	)
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if err := p.writer.Close(); err != nil {
		p.log.Error("Failed to close Kafka writer", "error", err)
	}
}
