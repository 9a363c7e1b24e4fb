package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	awspkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/aws"
	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/logger"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/invoice"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/lock"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/models"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/queue"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

// OrderService drives the order lifecycle from creation to invoicing.
type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, page, limit int, status string) (*OrderListResponse, error)
	CancelOrder(ctx context.Context, id uint) error
	RequestConfirmation(ctx context.Context, id uint) error
	FulfillOrder(ctx context.Context, id uint) (*models.Order, error)

	// AcceptOrderEvent handles an order-created event on the worker side.
	AcceptOrderEvent(ctx context.Context, evt models.OrderEvent) error
	// ConfirmOrder confirms the order named by evt and attaches its invoice.
	ConfirmOrder(ctx context.Context, evt models.OrderEvent) error
}

// BlobPublisher stores a document and returns its URL.
type BlobPublisher interface {
	Upload(ctx context.Context, name string, body []byte, contentType string) (string, error)
}

type InvoiceGenerator interface {
	Generate(s invoice.Snapshot) (*invoice.Document, error)
}

// PublishFailureHook is told about order events that could not be queued.
type PublishFailureHook func(ctx context.Context, queueName string, evt models.OrderEvent, err error)

type OrderServiceConfig struct {
	OrdersQueue       string
	ConfirmationQueue string
	SNSTopicArn       string
	PublishTimeout    time.Duration
	StepTimeout       time.Duration
	AutoConfirm       bool
}

func (c *OrderServiceConfig) applyDefaults() {
	if c.OrdersQueue == "" {
		c.OrdersQueue = queue.OrdersQueue
	}
	if c.ConfirmationQueue == "" {
		c.ConfirmationQueue = queue.ConfirmationQueue
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 5 * time.Second
	}
	if c.StepTimeout <= 0 {
		c.StepTimeout = 15 * time.Second
	}
}

// OrderDeps are the collaborators of the order service. Only Repo and
// Logger are required; the API leaves the invoicing pieces nil and the
// worker may leave SNS and Locker nil.
type OrderDeps struct {
	Repo             repository.OrderRepository
	Publisher        queue.Publisher
	SNS              awspkg.SNSPublisher
	Blob             BlobPublisher
	Invoices         InvoiceGenerator
	Locker           lock.Locker
	Metrics          awspkg.MetricRecorder
	OnPublishFailure PublishFailureHook
	Logger           *zap.Logger
}

type orderServiceImpl struct {
	OrderDeps
	cfg OrderServiceConfig
	now func() time.Time
}

func NewOrderService(deps OrderDeps, cfg OrderServiceConfig) OrderService {
	cfg.applyDefaults()
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &orderServiceImpl{OrderDeps: deps, cfg: cfg, now: time.Now}
}

func validateOrderRequest(req *models.CreateOrderRequest) error {
	if req == nil || len(req.Items) == 0 {
		return apperrors.Validation("At least one item is required")
	}
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return apperrors.Validation(fmt.Sprintf("items[%d].quantity must be greater than 0", i))
		}
		if it.Price.IsNegative() {
			return apperrors.Validation(fmt.Sprintf("items[%d].price must not be negative", i))
		}
	}
	return validateRequest(req)
}

// CreateOrder persists the order and queues an order-created event. A failed
// publish is reported to the hook and does not fail the call.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}
	log := logger.For(ctx, s.Logger)

	order := &models.Order{
		ExternalRef: models.NewExternalRef(s.now()),
		Status:      models.OrderStatusCreated,
		WarehouseID: req.WarehouseID,
		Items:       make([]models.OrderItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.Round(2),
		})
	}

	if err := s.Repo.CreateWithItems(ctx, order); err != nil {
		mapped := apperrors.FromStore(err, "order")
		if apperrors.StatusOf(mapped) >= 500 {
			log.Error("Failed to persist order", zap.Error(err))
		}
		return nil, mapped
	}
	s.count(ctx, awspkg.MetricOrdersCreated)

	evt := models.NewOrderCreatedEvent(order)
	if err := s.publish(ctx, s.cfg.OrdersQueue, evt); err != nil {
		log.Error("Failed to publish order event",
			zap.String("order_id", order.ExternalRef),
			zap.String("queue", s.cfg.OrdersQueue),
			zap.Error(err),
		)
		s.count(ctx, awspkg.MetricOrderEventPublishFailed)
		if s.OnPublishFailure != nil {
			s.OnPublishFailure(ctx, s.cfg.OrdersQueue, evt, err)
		}
	}
	s.fanOut(ctx, evt)

	log.Info("Order created",
		zap.Uint("id", order.ID),
		zap.String("order_id", order.ExternalRef),
		zap.Uint("warehouse_id", order.WarehouseID),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

func (s *orderServiceImpl) publish(ctx context.Context, queueName string, evt models.OrderEvent) error {
	if s.Publisher == nil {
		return errors.New("no queue publisher configured")
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PublishTimeout)
	defer cancel()
	return s.Publisher.Publish(pctx, queueName, evt)
}

// encodeEvent serialises events for SNS.
var encodeEvent = json.Marshal

// fanOut copies the order-created event to SNS, best-effort.
func (s *orderServiceImpl) fanOut(ctx context.Context, evt models.OrderEvent) {
	if s.SNS == nil || s.cfg.SNSTopicArn == "" {
		return
	}
	body, err := encodeEvent(evt)
	if err != nil {
		s.Logger.Warn("SNS fan-out skipped, event not encodable", zap.String("order_id", evt.OrderID), zap.Error(err))
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PublishTimeout)
	defer cancel()
	if err := s.SNS.Publish(pctx, s.cfg.SNSTopicArn, body); err != nil {
		s.Logger.Warn("SNS publish failed", zap.String("order_id", evt.OrderID), zap.Error(err))
	}
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "order")
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, page, limit int, status string) (*OrderListResponse, error) {
	var st models.OrderStatus
	if status != "" {
		parsed, err := models.ParseOrderStatus(status)
		if err != nil {
			return nil, apperrors.Validation(err.Error())
		}
		st = parsed
	}

	orders, total, err := s.Repo.List(ctx, page, limit, st)
	if err != nil {
		s.Logger.Error("Failed to list orders", zap.Error(err))
		return nil, apperrors.FromStore(err, "order")
	}

	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

func (s *orderServiceImpl) CancelOrder(ctx context.Context, id uint) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return apperrors.FromStore(err, "order")
	}
	logger.For(ctx, s.Logger).Info("Order cancelled", zap.Uint("id", id))
	return nil
}

func (s *orderServiceImpl) RequestConfirmation(ctx context.Context, id uint) error {
	order, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return apperrors.FromStore(err, "order")
	}
	if order.Status != models.OrderStatusConfirmed && !order.Status.CanTransitionTo(models.OrderStatusConfirmed) {
		return apperrors.Conflict(fmt.Sprintf("order in status %s cannot be confirmed", order.Status))
	}
	if err := s.publish(ctx, s.cfg.ConfirmationQueue, models.OrderEvent{OrderID: order.ExternalRef}); err != nil {
		return apperrors.Transport("failed to publish confirmation request", err)
	}
	logger.For(ctx, s.Logger).Info("Confirmation requested", zap.String("order_id", order.ExternalRef))
	return nil
}

func (s *orderServiceImpl) FulfillOrder(ctx context.Context, id uint) (*models.Order, error) {
	n, err := s.Repo.TransitionStatus(ctx, id, models.StatusesReaching(models.OrderStatusFulfilled), models.OrderStatusFulfilled)
	if err != nil {
		return nil, apperrors.FromStore(err, "order")
	}
	order, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "order")
	}
	if n == 0 {
		return nil, apperrors.Conflict(fmt.Sprintf("order in status %s cannot be fulfilled", order.Status))
	}
	logger.For(ctx, s.Logger).Info("Order fulfilled", zap.String("order_id", order.ExternalRef))
	return order, nil
}

func (s *orderServiceImpl) AcceptOrderEvent(ctx context.Context, evt models.OrderEvent) error {
	ref := strings.TrimSpace(evt.OrderID)
	if ref == "" {
		return apperrors.Validation("order_id is required")
	}
	order, err := s.Repo.FindByExternalRef(ctx, ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.Logger.Warn("Order event for unknown order dropped", zap.String("order_id", ref))
		return nil
	}
	if err != nil {
		return apperrors.Storage("failed to load order", err)
	}

	s.Logger.Info("Order event received",
		zap.String("order_id", ref),
		zap.String("status", string(order.Status)),
		zap.Int("items", len(evt.Items)),
	)
	if !s.cfg.AutoConfirm || !order.Status.CanTransitionTo(models.OrderStatusConfirmed) {
		return nil
	}
	if err := s.publish(ctx, s.cfg.ConfirmationQueue, models.OrderEvent{OrderID: ref}); err != nil {
		return apperrors.Transport("failed to forward confirmation request", err)
	}
	return nil
}

// ConfirmSteps is the number of individually bounded steps in ConfirmOrder,
// each limited by StepTimeout.
const ConfirmSteps = 6

// ConfirmOrder moves the order to confirmed, renders its invoice from the
// stored items, uploads it and records the URL. Events for unknown orders,
// orders locked by another worker, or orders changed concurrently are
// dropped without error. Terminal orders are rejected with a Conflict.
func (s *orderServiceImpl) ConfirmOrder(ctx context.Context, evt models.OrderEvent) error {
	ref := strings.TrimSpace(evt.OrderID)
	log := s.Logger.With(zap.String("order_id", ref))
	if ref == "" {
		log.Warn("Confirmation event without order_id dropped")
		return apperrors.Validation("order_id is required")
	}

	if s.Locker != nil {
		token, err := s.Locker.Acquire(ctx, ref)
		switch {
		case errors.Is(err, lock.ErrNotAcquired):
			log.Info("Confirmation already in progress elsewhere, event dropped")
			return nil
		case err != nil:
			log.Warn("Lock unavailable, continuing without it", zap.Error(err))
		default:
			defer func() {
				rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
				defer cancel()
				if err := s.Locker.Release(rctx, ref, token); err != nil {
					log.Warn("Failed to release lock", zap.Error(err))
				}
			}()
		}
	}

	err := s.confirm(ctx, ref, log)
	if err != nil {
		s.count(ctx, awspkg.MetricOrderConfirmationFailed)
	}
	return err
}

func (s *orderServiceImpl) confirm(ctx context.Context, ref string, log *zap.Logger) error {
	order, err := withTimeout(ctx, s.cfg.StepTimeout, func(ctx context.Context) (*models.Order, error) {
		return s.Repo.FindByExternalRef(ctx, ref)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("Confirmation for unknown order dropped")
		return nil
	}
	if err != nil {
		log.Error("Failed to load order", zap.Error(err))
		return apperrors.Storage("failed to load order", err)
	}

	switch {
	case order.Status == models.OrderStatusConfirmed:
		log.Info("Order already confirmed, regenerating invoice")
	case order.Status.CanTransitionTo(models.OrderStatusConfirmed):
		n, err := withTimeout(ctx, s.cfg.StepTimeout, func(ctx context.Context) (int64, error) {
			return s.Repo.TransitionStatus(ctx, order.ID, models.StatusesReaching(models.OrderStatusConfirmed), models.OrderStatusConfirmed)
		})
		if err != nil {
			log.Error("Failed to confirm order", zap.Error(err))
			return apperrors.Storage("failed to update order status", err)
		}
		if n == 0 {
			log.Warn("Order status changed concurrently, event dropped", zap.String("status", string(order.Status)))
			return nil
		}
		order.Status = models.OrderStatusConfirmed
	default:
		log.Warn("Order cannot be confirmed, event dropped", zap.String("status", string(order.Status)))
		return apperrors.Conflict(fmt.Sprintf("order in status %s cannot be confirmed", order.Status))
	}

	items, err := withTimeout(ctx, s.cfg.StepTimeout, func(ctx context.Context) ([]models.OrderItem, error) {
		return s.Repo.FindItems(ctx, order.ID)
	})
	if err != nil {
		log.Error("Failed to load order items", zap.Error(err))
		return apperrors.Storage("failed to load order items", err)
	}
	if len(items) == 0 {
		log.Warn("Order has no items, invoicing a zero total")
	}

	if s.Invoices == nil || s.Blob == nil {
		return apperrors.New(http.StatusInternalServerError, "invoicing is not configured", nil)
	}

	snapshot := invoice.Snapshot{OrderID: order.ID, OrderRef: order.ExternalRef, WarehouseID: order.WarehouseID}
	for _, it := range items {
		snapshot.Items = append(snapshot.Items, invoice.LineItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.Price})
	}

	doc, err := withTimeout(ctx, s.cfg.StepTimeout, func(context.Context) (*invoice.Document, error) {
		return s.Invoices.Generate(snapshot)
	})
	if err != nil {
		log.Error("Failed to render invoice", zap.Error(err))
		return apperrors.Storage("failed to render invoice", err)
	}

	url, err := withTimeout(ctx, s.cfg.StepTimeout, func(ctx context.Context) (string, error) {
		return s.Blob.Upload(ctx, doc.Name, doc.Body, invoice.ContentType)
	})
	if err != nil {
		log.Error("Failed to upload invoice", zap.String("blob", doc.Name), zap.Error(err))
		return apperrors.Storage("failed to upload invoice", err)
	}
	s.count(ctx, awspkg.MetricInvoicesUploaded)

	if _, err := withTimeout(ctx, s.cfg.StepTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.Repo.SetInvoiceRef(ctx, order.ID, url)
	}); err != nil {
		log.Error("Failed to record invoice reference", zap.String("invoice_ref", url), zap.Error(err))
		return apperrors.Storage("failed to record invoice reference", err)
	}

	total := doc.Layout.Total
	s.count(ctx, awspkg.MetricOrdersConfirmed)
	s.value(ctx, awspkg.MetricInvoiceTotal, total.InexactFloat64())
	log.Info("Order confirmed",
		zap.String("invoice", doc.Layout.InvoiceNumber),
		zap.String("invoice_ref", url),
		zap.String("total", total.StringFixed(2)),
	)
	return nil
}

// withTimeout runs fn under its own deadline and gives up when the deadline
// passes even if fn ignores its context.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	stepCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(stepCtx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-stepCtx.Done():
		var zero T
		return zero, stepCtx.Err()
	}
}

func (s *orderServiceImpl) count(ctx context.Context, name string) {
	if s.Metrics == nil || !s.Metrics.IsEnabled() {
		return
	}
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.Metrics.RecordCount(mctx, name, map[string]string{"Component": "orders"}); err != nil {
		s.Logger.Debug("metric not recorded", zap.String("metric", name), zap.Error(err))
	}
}

func (s *orderServiceImpl) value(ctx context.Context, name string, v float64) {
	if s.Metrics == nil || !s.Metrics.IsEnabled() {
		return
	}
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.Metrics.RecordValue(mctx, name, v, map[string]string{"Component": "orders"}); err != nil {
		s.Logger.Debug("metric not recorded", zap.String("metric", name), zap.Error(err))
	}
}
