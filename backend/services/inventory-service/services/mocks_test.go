package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/invoice"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/models"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) CreateWithItems(ctx context.Context, o *models.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) FindByExternalRef(ctx context.Context, ref string) (*models.Order, error) {
	args := m.Called(ctx, ref)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) FindItems(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]models.OrderItem)
	return items, args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, page, limit int, status models.OrderStatus) ([]models.Order, int64, error) {
	args := m.Called(ctx, page, limit, status)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, id uint, from []models.OrderStatus, to models.OrderStatus) (int64, error) {
	args := m.Called(ctx, id, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SetInvoiceRef(ctx context.Context, id uint, ref string) error {
	return m.Called(ctx, id, ref).Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, queueName string, payload any) error {
	return m.Called(ctx, queueName, payload).Error(0)
}

type MockSNS struct{ mock.Mock }

func (m *MockSNS) Publish(ctx context.Context, topicArn string, message []byte) error {
	return m.Called(ctx, topicArn, message).Error(0)
}

type MockBlob struct{ mock.Mock }

func (m *MockBlob) Upload(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, name, body, contentType)
	return args.String(0), args.Error(1)
}

type MockLocker struct{ mock.Mock }

func (m *MockLocker) Acquire(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockLocker) Release(ctx context.Context, key, token string) error {
	return m.Called(ctx, key, token).Error(0)
}

// recordingRenderer keeps the last layout it was asked to draw.
type recordingRenderer struct {
	mu   sync.Mutex
	last invoice.Layout
}

func (r *recordingRenderer) Render(l invoice.Layout) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = l
	return []byte("%PDF-test"), nil
}

func (r *recordingRenderer) Last() invoice.Layout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

type recordingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counts: map[string]int{}}
}

func (r *recordingMetrics) IsEnabled() bool { return true }

func (r *recordingMetrics) RecordCount(_ context.Context, name string, _ map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name]++
	return nil
}

func (r *recordingMetrics) RecordLatency(context.Context, string, time.Duration, map[string]string) error {
	return nil
}

func (r *recordingMetrics) RecordValue(context.Context, string, float64, map[string]string) error {
	return nil
}

func (r *recordingMetrics) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}
