package repository

import (
	"context"
	"time"

	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/models"
	"gorm.io/gorm"
)

// CatalogRepository persists suppliers, products, warehouses and stock
// levels. Errors are GORM's (translated by the dialector); a write that
// matches no row returns gorm.ErrRecordNotFound.
type CatalogRepository interface {
	CreateSupplier(ctx context.Context, s *models.Supplier) error
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)

	CreateProduct(ctx context.Context, p *models.Product) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error

	CreateWarehouse(ctx context.Context, w *models.Warehouse) error
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)

	CreateInventory(ctx context.Context, rec *models.InventoryRecord) error
	ListInventory(ctx context.Context) ([]models.InventoryRecord, error)
	FindInventory(ctx context.Context, id uint) (*models.InventoryRecord, error)
	UpdateInventoryQuantity(ctx context.Context, id uint, quantity int) error
	ListInventoryByWarehouse(ctx context.Context, warehouseID uint) ([]models.InventoryRecord, error)
	ListInventoryByProduct(ctx context.Context, productID uint) ([]models.InventoryRecord, error)
}

type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) CatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) CreateSupplier(ctx context.Context, s *models.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *GormCatalogRepository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var out []models.Supplier
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormCatalogRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Supplier").Create(p).Error
}

func (r *GormCatalogRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormCatalogRepository) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

var productColumns = []string{"sku", "name", "description", "category", "price", "supplier_id", "image_url"}

func (r *GormCatalogRepository) UpdateProduct(ctx context.Context, p *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{ID: p.ID}).
		Select(productColumns).
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormCatalogRepository) DeleteProduct(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormCatalogRepository) CreateWarehouse(ctx context.Context, w *models.Warehouse) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *GormCatalogRepository) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var out []models.Warehouse
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormCatalogRepository) CreateInventory(ctx context.Context, rec *models.InventoryRecord) error {
	return r.db.WithContext(ctx).Omit("Product", "Warehouse").Create(rec).Error
}

func (r *GormCatalogRepository) ListInventory(ctx context.Context) ([]models.InventoryRecord, error) {
	return r.listInventory(ctx, "", 0)
}

func (r *GormCatalogRepository) FindInventory(ctx context.Context, id uint) (*models.InventoryRecord, error) {
	var rec models.InventoryRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormCatalogRepository) UpdateInventoryQuantity(ctx context.Context, id uint, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"quantity": quantity, "last_updated": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormCatalogRepository) ListInventoryByWarehouse(ctx context.Context, warehouseID uint) ([]models.InventoryRecord, error) {
	return r.listInventory(ctx, "warehouse_id = ?", warehouseID)
}

func (r *GormCatalogRepository) ListInventoryByProduct(ctx context.Context, productID uint) ([]models.InventoryRecord, error) {
	return r.listInventory(ctx, "product_id = ?", productID)
}

func (r *GormCatalogRepository) listInventory(ctx context.Context, cond string, arg uint) ([]models.InventoryRecord, error) {
	q := r.db.WithContext(ctx).Model(&models.InventoryRecord{})
	if cond != "" {
		q = q.Where(cond, arg)
	}
	var out []models.InventoryRecord
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
