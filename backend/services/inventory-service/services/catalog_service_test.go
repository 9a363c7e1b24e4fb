package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MockCatalogRepository struct{ mock.Mock }

func (m *MockCatalogRepository) CreateSupplier(ctx context.Context, s *models.Supplier) error {
	return m.Called(ctx, s).Error(0)
}
func (m *MockCatalogRepository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.Supplier)
	return out, args.Error(1)
}
func (m *MockCatalogRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockCatalogRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.Product)
	return out, args.Error(1)
}
func (m *MockCatalogRepository) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}
func (m *MockCatalogRepository) UpdateProduct(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockCatalogRepository) DeleteProduct(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockCatalogRepository) CreateWarehouse(ctx context.Context, w *models.Warehouse) error {
	return m.Called(ctx, w).Error(0)
}
func (m *MockCatalogRepository) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.Warehouse)
	return out, args.Error(1)
}
func (m *MockCatalogRepository) CreateInventory(ctx context.Context, rec *models.InventoryRecord) error {
	return m.Called(ctx, rec).Error(0)
}
func (m *MockCatalogRepository) ListInventory(ctx context.Context) ([]models.InventoryRecord, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.InventoryRecord)
	return out, args.Error(1)
}
func (m *MockCatalogRepository) FindInventory(ctx context.Context, id uint) (*models.InventoryRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*models.InventoryRecord)
	return rec, args.Error(1)
}
func (m *MockCatalogRepository) UpdateInventoryQuantity(ctx context.Context, id uint, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}
func (m *MockCatalogRepository) ListInventoryByWarehouse(ctx context.Context, warehouseID uint) ([]models.InventoryRecord, error) {
	args := m.Called(ctx, warehouseID)
	out, _ := args.Get(0).([]models.InventoryRecord)
	return out, args.Error(1)
}
func (m *MockCatalogRepository) ListInventoryByProduct(ctx context.Context, productID uint) ([]models.InventoryRecord, error) {
	args := m.Called(ctx, productID)
	out, _ := args.Get(0).([]models.InventoryRecord)
	return out, args.Error(1)
}

func productRequest() *models.ProductRequest {
	return &models.ProductRequest{SKU: "SKU-1", Name: "Widget", Price: decimal.RequireFromString("12.345")}
}

func TestCreateProduct_RoundsPrice(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, zap.NewNop())
	repo.On("CreateProduct", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil)

	p, err := svc.CreateProduct(context.Background(), productRequest())
	require.NoError(t, err)
	assert.Equal(t, "12.35", p.Price.StringFixed(2))
}

func TestCreateProduct_DuplicateSKUIsConflict(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, zap.NewNop())
	repo.On("CreateProduct", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := svc.CreateProduct(context.Background(), productRequest())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCreateProduct_Validation(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, zap.NewNop())

	req := productRequest()
	req.SKU = ""
	_, err := svc.CreateProduct(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.EqualError(t, err, "sku is required")

	req = productRequest()
	req.Price = decimal.NewFromInt(-1)
	_, err = svc.CreateProduct(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	repo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, zap.NewNop())
	repo.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(p *models.Product) bool { return p.ID == 9 })).Return(gorm.ErrRecordNotFound)

	_, err := svc.UpdateProduct(context.Background(), 9, productRequest())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteProduct_StoreFailureIsStorage(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, zap.NewNop())
	repo.On("DeleteProduct", mock.Anything, uint(1)).Return(assert.AnError)

	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), 1), apperrors.ErrStorage)
}

func TestDeleteProduct_ReferencedByOrdersIsConflict(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, zap.NewNop())
	repo.On("DeleteProduct", mock.Anything, uint(4)).Return(gorm.ErrForeignKeyViolated)

	err := svc.DeleteProduct(context.Background(), 4)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, http.StatusConflict, apperrors.StatusOf(err))
	repo.AssertExpectations(t)
}

func TestDeleteProduct_MissingIsNotFound(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, zap.NewNop())
	repo.On("DeleteProduct", mock.Anything, uint(5)).Return(gorm.ErrRecordNotFound)

	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), 5), apperrors.ErrNotFound)
}

func TestCreateWarehouse_CodeTooLong(t *testing.T) {
	svc := NewCatalogService(&MockCatalogRepository{}, zap.NewNop())
	_, err := svc.CreateWarehouse(context.Background(), &models.CreateWarehouseRequest{Code: "WAREHOUSE-CODE-TOO-LONG", Name: "Main"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateInventory_UnknownProductIsNotFound(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, zap.NewNop())
	repo.On("CreateInventory", mock.Anything, mock.Anything).Return(gorm.ErrForeignKeyViolated)

	_, err := svc.CreateInventory(context.Background(), &models.CreateInventoryRequest{ProductID: 1, WarehouseID: 2, Quantity: 5})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateInventory(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, zap.NewNop())

	_, err := svc.UpdateInventory(context.Background(), 5, &models.UpdateInventoryRequest{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	negative := -3
	_, err = svc.UpdateInventory(context.Background(), 5, &models.UpdateInventoryRequest{Quantity: &negative})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	zero := 0
	repo.On("UpdateInventoryQuantity", mock.Anything, uint(5), 0).Return(nil)
	repo.On("FindInventory", mock.Anything, uint(5)).Return(&models.InventoryRecord{ID: 5, Quantity: 0}, nil)
	rec, err := svc.UpdateInventory(context.Background(), 5, &models.UpdateInventoryRequest{Quantity: &zero})
	require.NoError(t, err)
	assert.Equal(t, uint(5), rec.ID)
}
