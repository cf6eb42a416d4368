package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/i474232898/wildfire-risk/internal/assessment"
)

// EventType is carried in the event_type header of every prediction message.
const EventType = "wildfire.prediction"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher produces one message per prediction to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a producer for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, pred assessment.Prediction) error {
	msg, err := serializeToMessage(pred)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish prediction %s: %w", pred.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Prediction into a Kafka message keyed by
// its location so a location's predictions stay ordered on one partition.
func serializeToMessage(pred assessment.Prediction) (kafkago.Message, error) {
	data, err := json.Marshal(pred)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(pred.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventType)},
			{Key: "prediction_id", Value: []byte(pred.ID)},
			{Key: "created_at", Value: []byte(pred.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}

// NopPublisher discards predictions. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, assessment.Prediction) error { return nil }
