package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher publishes trip events as JSON, keyed by trip id so events
// for one trip stay on one partition.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaWriter builds a writer for topic on brokers.
func NewKafkaWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		WriteTimeout: 5 * time.Second,
	}
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishTripPlanned(ctx context.Context, evt ports.TripPlannedEvent) (err error) {
	defer obs.Time(ctx, "kafka.PublishTripPlanned")(&err)

	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("publish trip planned: encode: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(evt.TripID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte("trip.planned")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish trip planned trip_id=%s: %w", evt.TripID, err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
