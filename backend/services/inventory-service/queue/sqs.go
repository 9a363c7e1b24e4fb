package queue

import (
	"context"
	"encoding/json"
	"fmt"

	awspkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/aws"
)

// SQSTransport addresses SQS queues by name.
type SQSTransport struct {
	client *awspkg.SQSClient
}

func NewSQSTransport(client *awspkg.SQSClient) *SQSTransport {
	return &SQSTransport{client: client}
}

func (t *SQSTransport) Publish(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message for %s: %w", queue, err)
	}
	return t.client.Send(ctx, queue, body)
}

func (t *SQSTransport) Consume(ctx context.Context, queue string, handler Handler) error {
	err := t.client.Poll(ctx, queue, func(ctx context.Context, body []byte) error {
		return handler(ctx, DecodeEnvelope(body))
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (t *SQSTransport) Close() error { return nil }
