// Package consumer decodes order events from the queues and dispatches them
// into the order service.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	awspkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/aws"
	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/models"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/queue"
)

// OrderProcessor is the slice of the order service the worker drives.
type OrderProcessor interface {
	AcceptOrderEvent(ctx context.Context, evt models.OrderEvent) error
	ConfirmOrder(ctx context.Context, evt models.OrderEvent) error
}

// Outcome dimension values for MetricQueueMessages.
const (
	OutcomeProcessed = "processed"
	OutcomeDropped   = "dropped"
	OutcomeRetry     = "retry"
	OutcomeFailed    = "failed"
)

type Handlers struct {
	orders  OrderProcessor
	metrics awspkg.MetricRecorder
	logger  *zap.Logger
}

func NewHandlers(orders OrderProcessor, metrics awspkg.MetricRecorder, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{orders: orders, metrics: metrics, logger: logger}
}

// Intake handles orders-queue messages. Malformed bodies are dropped; store
// and transport failures are returned so the queue redelivers the message.
func (h *Handlers) Intake(ctx context.Context, body []byte) error {
	evt, ok := h.decode(ctx, queue.OrdersQueue, body)
	if !ok {
		return nil
	}
	err := h.orders.AcceptOrderEvent(ctx, evt)
	switch {
	case err == nil:
		h.record(ctx, queue.OrdersQueue, OutcomeProcessed)
		return nil
	case errors.Is(err, apperrors.ErrStorage), errors.Is(err, apperrors.ErrTransport):
		h.logger.Warn("Order event will be redelivered", zap.String("order_id", evt.OrderID), zap.Error(err))
		h.record(ctx, queue.OrdersQueue, OutcomeRetry)
		return err
	default:
		h.logger.Warn("Order event dropped", zap.String("order_id", evt.OrderID), zap.Error(err))
		h.record(ctx, queue.OrdersQueue, OutcomeDropped)
		return nil
	}
}

// Confirmation handles order-confirmation-queue messages. Every message is
// acknowledged; a failed confirmation is logged and not retried.
func (h *Handlers) Confirmation(ctx context.Context, body []byte) error {
	evt, ok := h.decode(ctx, queue.ConfirmationQueue, body)
	if !ok {
		return nil
	}
	if err := h.orders.ConfirmOrder(ctx, evt); err != nil {
		h.logger.Error("Order confirmation failed", zap.String("order_id", evt.OrderID), zap.Error(err))
		h.record(ctx, queue.ConfirmationQueue, OutcomeFailed)
		return nil
	}
	h.record(ctx, queue.ConfirmationQueue, OutcomeProcessed)
	return nil
}

func (h *Handlers) decode(ctx context.Context, queueName string, body []byte) (models.OrderEvent, bool) {
	var evt models.OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		h.logger.Error("Malformed order event dropped",
			zap.String("queue", queueName),
			zap.ByteString("body", body),
			zap.Error(err),
		)
		h.record(ctx, queueName, OutcomeDropped)
		return evt, false
	}
	return evt, true
}

func (h *Handlers) record(ctx context.Context, queueName, outcome string) {
	if h.metrics == nil || !h.metrics.IsEnabled() {
		return
	}
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	dims := map[string]string{"Queue": queueName, "Outcome": outcome}
	if err := h.metrics.RecordCount(mctx, awspkg.MetricQueueMessages, dims); err != nil {
		h.logger.Debug("metric write failed", zap.Error(err))
	}
}

// Subscription binds a queue name to its handler.
type Subscription struct {
	Queue   string
	Handler queue.Handler
}

// Run consumes every subscription on its own goroutine until ctx is
// cancelled or one consumer fails, which stops the others.
func Run(ctx context.Context, c queue.Consumer, logger *zap.Logger, subs ...Subscription) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			logger.Info("Consumer started", zap.String("queue", sub.Queue))
			defer logger.Info("Consumer stopped", zap.String("queue", sub.Queue))
			return c.Consume(gctx, sub.Queue, sub.Handler)
		})
	}
	return g.Wait()
}
