package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTransport maps each queue name onto a topic of the same name.
// Offsets are committed only for messages the handler accepted; a rejected
// message is seen again after a rebalance or restart unless a later offset
// in its partition is committed first.
type KafkaTransport struct {
	writer    kafkaWriter
	newReader func(topic string) kafkaReader
	logger    *zap.Logger
}

func NewKafkaTransport(brokers []string, groupID string, logger *zap.Logger) *KafkaTransport {
	if groupID == "" {
		groupID = "order-processor"
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	logger.Info("kafka transport initialized", zap.Strings("brokers", brokers), zap.String("group", groupID))
	return &KafkaTransport{
		writer: w,
		newReader: func(topic string) kafkaReader {
			return kafka.NewReader(kafka.ReaderConfig{
				Brokers:        brokers,
				GroupID:        groupID,
				Topic:          topic,
				MinBytes:       1,
				MaxBytes:       10e6,
				CommitInterval: 0,
			})
		},
		logger: logger,
	}
}

// Publish writes payload to the topic named queue. Messages carrying an
// order_id are keyed by it so one order's events stay in one partition.
func (t *KafkaTransport) Publish(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message for %s: %w", queue, err)
	}
	msg := kafka.Message{Topic: queue, Value: body}
	var keyed struct {
		OrderID string `json:"order_id"`
	}
	if json.Unmarshal(body, &keyed) == nil && keyed.OrderID != "" {
		msg.Key = []byte(keyed.OrderID)
	}
	if err := t.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", queue, err)
	}
	return nil
}

func (t *KafkaTransport) Consume(ctx context.Context, queue string, handler Handler) error {
	r := t.newReader(queue)
	defer r.Close()

	t.logger.Info("kafka consumer started", zap.String("topic", queue))
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.logger.Info("kafka consumer stopped", zap.String("topic", queue))
				return nil
			}
			return fmt.Errorf("kafka fetch from %s: %w", queue, err)
		}

		if err := handler(ctx, DecodeEnvelope(m.Value)); err != nil {
			t.logger.Warn("message left uncommitted",
				zap.String("topic", queue),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			continue
		}
		if err := r.CommitMessages(ctx, m); err != nil {
			t.logger.Warn("kafka commit failed", zap.String("topic", queue), zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

func (t *KafkaTransport) Close() error {
	return t.writer.Close()
}
