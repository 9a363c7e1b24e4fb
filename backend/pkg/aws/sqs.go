package aws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// SQSAPI is the subset of the SQS client used here.
type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// MessageHandler processes one message body. Returning nil acknowledges
// (deletes) the message; an error leaves it for redelivery after the
// visibility timeout.
type MessageHandler func(ctx context.Context, body []byte) error

// SQSClient sends to and polls SQS queues addressed by name.
type SQSClient struct {
	api    SQSAPI
	logger *zap.Logger

	mu   sync.RWMutex
	urls map[string]string

	WaitTimeSeconds   int32
	VisibilityTimeout int32
	MaxMessages       int32
	// RetryDelay is the pause after a failed receive.
	RetryDelay time.Duration
}

func NewSQSClient(cfg sdkaws.Config, logger *zap.Logger) *SQSClient {
	return NewSQSClientWithAPI(sqs.NewFromConfig(cfg), logger)
}

func NewSQSClientWithAPI(api SQSAPI, logger *zap.Logger) *SQSClient {
	return &SQSClient{
		api:               api,
		logger:            logger,
		urls:              make(map[string]string),
		WaitTimeSeconds:   20,
		VisibilityTimeout: 30,
		MaxMessages:       10,
		RetryDelay:        5 * time.Second,
	}
}

// QueueURL resolves a queue name to its URL, caching the result.
func (c *SQSClient) QueueURL(ctx context.Context, name string) (string, error) {
	c.mu.RLock()
	url, ok := c.urls[name]
	c.mu.RUnlock()
	if ok {
		return url, nil
	}

	out, err := c.api.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: sdkaws.String(name)})
	if err != nil {
		return "", fmt.Errorf("failed to get queue URL for %s: %w", name, err)
	}
	url = sdkaws.ToString(out.QueueUrl)

	c.mu.Lock()
	c.urls[name] = url
	c.mu.Unlock()
	return url, nil
}

// Send publishes body to the named queue.
func (c *SQSClient) Send(ctx context.Context, queue string, body []byte) error {
	url, err := c.QueueURL(ctx, queue)
	if err != nil {
		return err
	}
	if _, err := c.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(url),
		MessageBody: sdkaws.String(string(body)),
	}); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", queue, err)
	}
	return nil
}

// Poll long-polls the named queue until ctx is cancelled.
func (c *SQSClient) Poll(ctx context.Context, queue string, handler MessageHandler) error {
	url, err := c.QueueURL(ctx, queue)
	if err != nil {
		return err
	}
	c.logger.Info("sqs polling started", zap.String("queue", queue))

	for {
		if err := ctx.Err(); err != nil {
			c.logger.Info("sqs polling stopped", zap.String("queue", queue))
			return err
		}
		_, err := c.PollOnce(ctx, url, handler)
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		c.logger.Warn("sqs receive failed, backing off",
			zap.String("queue", queue),
			zap.Duration("retry_in", c.RetryDelay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
		case <-time.After(c.RetryDelay):
		}
	}
}

// PollOnce receives one batch from url and dispatches it. It returns the
// number of messages acknowledged.
func (c *SQSClient) PollOnce(ctx context.Context, url string, handler MessageHandler) (int, error) {
	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            sdkaws.String(url),
		MaxNumberOfMessages: c.MaxMessages,
		WaitTimeSeconds:     c.WaitTimeSeconds,
		VisibilityTimeout:   c.VisibilityTimeout,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to receive messages: %w", err)
	}

	acked := 0
	for _, msg := range out.Messages {
		if msg.Body == nil {
			continue
		}
		if err := handler(ctx, []byte(*msg.Body)); err != nil {
			c.logger.Warn("message left for redelivery",
				zap.String("message_id", sdkaws.ToString(msg.MessageId)),
				zap.Error(err),
			)
			continue
		}
		if _, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      sdkaws.String(url),
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			c.logger.Warn("failed to delete message", zap.String("message_id", sdkaws.ToString(msg.MessageId)), zap.Error(err))
			continue
		}
		acked++
	}
	return acked, nil
}
