package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Supplier provides products.
type Supplier struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:120;not null" json:"name"`
	Contact string `gorm:"size:120" json:"contact"`
	Region  string `gorm:"size:64" json:"region"`
}

// Product is a sellable item identified by a unique SKU.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SKU         string          `gorm:"column:sku;size:40;uniqueIndex;not null" json:"sku"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"size:80;index" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	SupplierID  *uint           `gorm:"index" json:"supplier_id"`
	Supplier    *Supplier       `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ImageURL    string          `gorm:"size:512" json:"image_url"`
}

// Warehouse holds stock. Capacity is informational only.
type Warehouse struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Code     string `gorm:"size:16;uniqueIndex;not null" json:"code"`
	Name     string `gorm:"size:120;not null" json:"name"`
	Location string `gorm:"size:200" json:"location"`
	Capacity int    `gorm:"not null;default:0" json:"capacity"`
	Manager  string `gorm:"size:120" json:"manager"`
	Region   string `gorm:"size:64" json:"region"`
}

// InventoryRecord is the stock level of one product in one warehouse.
type InventoryRecord struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProductID   uint       `gorm:"not null;uniqueIndex:idx_inventory_product_warehouse" json:"product_id"`
	Product     *Product   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	WarehouseID uint       `gorm:"not null;uniqueIndex:idx_inventory_product_warehouse;index" json:"warehouse_id"`
	Warehouse   *Warehouse `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Quantity    int        `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	LastUpdated time.Time  `gorm:"autoUpdateTime" json:"last_updated"`
}

func (InventoryRecord) TableName() string { return "inventory" }

// CreateSupplierRequest is the body of POST /suppliers.
type CreateSupplierRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Contact string `json:"contact" validate:"max=120"`
	Region  string `json:"region" validate:"max=64"`
}

// ProductRequest is the body of POST /products and PUT /products/:id.
// PUT replaces every field.
type ProductRequest struct {
	SKU         string          `json:"sku" validate:"required,max=40"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"max=80"`
	Price       decimal.Decimal `json:"price"`
	SupplierID  *uint           `json:"supplier_id" validate:"omitempty,gt=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url,max=512"`
}

// Apply copies the request onto p.
func (r ProductRequest) Apply(p *Product) {
	p.SKU = r.SKU
	p.Name = r.Name
	p.Description = r.Description
	p.Category = r.Category
	p.Price = r.Price.Round(2)
	p.SupplierID = r.SupplierID
	p.ImageURL = r.ImageURL
}

// CreateWarehouseRequest is the body of POST /warehouses.
type CreateWarehouseRequest struct {
	Code     string `json:"code" validate:"required,max=16"`
	Name     string `json:"name" validate:"required,max=120"`
	Location string `json:"location" validate:"max=200"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Manager  string `json:"manager" validate:"max=120"`
	Region   string `json:"region" validate:"max=64"`
}

// CreateInventoryRequest is the body of POST /inventory.
type CreateInventoryRequest struct {
	ProductID   uint `json:"product_id" validate:"required"`
	WarehouseID uint `json:"warehouse_id" validate:"required"`
	Quantity    int  `json:"quantity" validate:"gte=0"`
}

// UpdateInventoryRequest is the body of PUT /inventory/:id.
type UpdateInventoryRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}
