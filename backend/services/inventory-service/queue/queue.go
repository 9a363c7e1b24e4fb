// Package queue moves order events between the API and the worker over SQS
// or Kafka.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	awspkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/aws"
	"go.uber.org/zap"
)

// Default queue names. Both can be overridden through configuration.
const (
	OrdersQueue       = "orders-queue"
	ConfirmationQueue = "order-confirmation-queue"
)

const (
	DriverSQS   = "sqs"
	DriverKafka = "kafka"
)

// Handler processes one decoded message body. Returning nil acknowledges it.
type Handler func(ctx context.Context, body []byte) error

type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

type Consumer interface {
	// Consume blocks until ctx is cancelled, calling handler per message.
	Consume(ctx context.Context, queue string, handler Handler) error
}

// Transport is both ends of a queue driver.
type Transport interface {
	Publisher
	Consumer
	Close() error
}

// Options selects and configures a Transport.
type Options struct {
	Driver       string
	SQS          *awspkg.SQSClient
	KafkaBrokers []string
	KafkaGroupID string
	Logger       *zap.Logger
}

// New builds the Transport named by opts.Driver; an empty driver means SQS.
func New(opts Options) (Transport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(opts.Driver) {
	case "", DriverSQS:
		if opts.SQS == nil {
			return nil, fmt.Errorf("sqs driver requires an SQS client")
		}
		return NewSQSTransport(opts.SQS), nil
	case DriverKafka:
		if len(opts.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka driver requires KAFKA_BROKERS")
		}
		return NewKafkaTransport(opts.KafkaBrokers, opts.KafkaGroupID, logger), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", opts.Driver)
	}
}

type snsEnvelope struct {
	Message *string `json:"Message"`
}

// DecodeEnvelope returns the inner message of an SNS notification delivered
// through a subscribed queue, or body unchanged.
func DecodeEnvelope(body []byte) []byte {
	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Message == nil {
		return body
	}
	return []byte(*env.Message)
}
