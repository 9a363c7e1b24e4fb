package services

import (
	"context"
	"errors"

	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/models"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService manages suppliers, products, warehouses and stock levels.
type CatalogService interface {
	CreateSupplier(ctx context.Context, req *models.CreateSupplierRequest) (*models.Supplier, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)

	CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, req *models.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error

	CreateWarehouse(ctx context.Context, req *models.CreateWarehouseRequest) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)

	CreateInventory(ctx context.Context, req *models.CreateInventoryRequest) (*models.InventoryRecord, error)
	ListInventory(ctx context.Context) ([]models.InventoryRecord, error)
	UpdateInventory(ctx context.Context, id uint, req *models.UpdateInventoryRequest) (*models.InventoryRecord, error)
	ListInventoryByWarehouse(ctx context.Context, warehouseID uint) ([]models.InventoryRecord, error)
	ListInventoryByProduct(ctx context.Context, productID uint) ([]models.InventoryRecord, error)
}

type catalogServiceImpl struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

func NewCatalogService(repo repository.CatalogRepository, logger *zap.Logger) CatalogService {
	return &catalogServiceImpl{repo: repo, logger: logger}
}

func (s *catalogServiceImpl) CreateSupplier(ctx context.Context, req *models.CreateSupplierRequest) (*models.Supplier, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	sup := &models.Supplier{Name: req.Name, Contact: req.Contact, Region: req.Region}
	if err := s.repo.CreateSupplier(ctx, sup); err != nil {
		return nil, s.storeErr("CreateSupplier", err, "supplier")
	}
	s.logger.Info("Supplier created", zap.Uint("supplier_id", sup.ID))
	return sup, nil
}

func (s *catalogServiceImpl) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	out, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, s.storeErr("ListSuppliers", err, "supplier")
	}
	return out, nil
}

func validateProduct(req *models.ProductRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if req.Price.IsNegative() {
		return apperrors.Validation("price must not be negative")
	}
	return nil
}

func (s *catalogServiceImpl) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	p := &models.Product{}
	req.Apply(p)
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, s.storeErr("CreateProduct", err, "product")
	}
	s.logger.Info("Product created", zap.Uint("product_id", p.ID), zap.String("sku", p.SKU))
	return p, nil
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context) ([]models.Product, error) {
	out, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, s.storeErr("ListProducts", err, "product")
	}
	return out, nil
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, s.storeErr("GetProduct", err, "product")
	}
	return p, nil
}

func (s *catalogServiceImpl) UpdateProduct(ctx context.Context, id uint, req *models.ProductRequest) (*models.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	p := &models.Product{ID: id}
	req.Apply(p)
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, s.storeErr("UpdateProduct", err, "product")
	}
	s.logger.Info("Product updated", zap.Uint("product_id", id))
	return p, nil
}

func (s *catalogServiceImpl) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		// Order lines restrict product deletion.
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperrors.Conflict("product is referenced by existing orders")
		}
		return s.storeErr("DeleteProduct", err, "product")
	}
	s.logger.Info("Product deleted", zap.Uint("product_id", id))
	return nil
}

func (s *catalogServiceImpl) CreateWarehouse(ctx context.Context, req *models.CreateWarehouseRequest) (*models.Warehouse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	w := &models.Warehouse{
		Code:     req.Code,
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
		Manager:  req.Manager,
		Region:   req.Region,
	}
	if err := s.repo.CreateWarehouse(ctx, w); err != nil {
		return nil, s.storeErr("CreateWarehouse", err, "warehouse")
	}
	s.logger.Info("Warehouse created", zap.Uint("warehouse_id", w.ID), zap.String("code", w.Code))
	return w, nil
}

func (s *catalogServiceImpl) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	out, err := s.repo.ListWarehouses(ctx)
	if err != nil {
		return nil, s.storeErr("ListWarehouses", err, "warehouse")
	}
	return out, nil
}

func (s *catalogServiceImpl) CreateInventory(ctx context.Context, req *models.CreateInventoryRequest) (*models.InventoryRecord, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	rec := &models.InventoryRecord{ProductID: req.ProductID, WarehouseID: req.WarehouseID, Quantity: req.Quantity}
	if err := s.repo.CreateInventory(ctx, rec); err != nil {
		return nil, s.storeErr("CreateInventory", err, "inventory record")
	}
	s.logger.Info("Inventory record created",
		zap.Uint("product_id", rec.ProductID),
		zap.Uint("warehouse_id", rec.WarehouseID),
		zap.Int("quantity", rec.Quantity),
	)
	return rec, nil
}

func (s *catalogServiceImpl) ListInventory(ctx context.Context) ([]models.InventoryRecord, error) {
	out, err := s.repo.ListInventory(ctx)
	if err != nil {
		return nil, s.storeErr("ListInventory", err, "inventory record")
	}
	return out, nil
}

func (s *catalogServiceImpl) UpdateInventory(ctx context.Context, id uint, req *models.UpdateInventoryRequest) (*models.InventoryRecord, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateInventoryQuantity(ctx, id, *req.Quantity); err != nil {
		return nil, s.storeErr("UpdateInventory", err, "inventory record")
	}
	rec, err := s.repo.FindInventory(ctx, id)
	if err != nil {
		return nil, s.storeErr("UpdateInventory", err, "inventory record")
	}
	return rec, nil
}

func (s *catalogServiceImpl) ListInventoryByWarehouse(ctx context.Context, warehouseID uint) ([]models.InventoryRecord, error) {
	out, err := s.repo.ListInventoryByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, s.storeErr("ListInventoryByWarehouse", err, "inventory record")
	}
	return out, nil
}

func (s *catalogServiceImpl) ListInventoryByProduct(ctx context.Context, productID uint) ([]models.InventoryRecord, error) {
	out, err := s.repo.ListInventoryByProduct(ctx, productID)
	if err != nil {
		return nil, s.storeErr("ListInventoryByProduct", err, "inventory record")
	}
	return out, nil
}

// storeErr maps a repository error and logs the ones that are not the
// caller's fault.
func (s *catalogServiceImpl) storeErr(op string, err error, entity string) error {
	mapped := apperrors.FromStore(err, entity)
	if apperrors.StatusOf(mapped) >= 500 {
		s.logger.Error(op+" failed", zap.Error(err))
	}
	return mapped
}
