package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/models"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/services"
)

// CatalogController handles suppliers, products, warehouses and stock.
type CatalogController struct {
	service services.CatalogService
}

func NewCatalogController(service services.CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

// CreateSupplier handles POST /suppliers
func (cc *CatalogController) CreateSupplier(c *gin.Context) {
	var req models.CreateSupplierRequest
	if !bindJSON(c, &req) {
		return
	}
	sup, err := cc.service.CreateSupplier(c.Request.Context(), &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, sup)
}

// ListSuppliers handles GET /suppliers
func (cc *CatalogController) ListSuppliers(c *gin.Context) {
	out, err := cc.service.ListSuppliers(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateProduct handles POST /products
func (cc *CatalogController) CreateProduct(c *gin.Context) {
	var req models.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := cc.service.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListProducts handles GET /products
func (cc *CatalogController) ListProducts(c *gin.Context) {
	out, err := cc.service.ListProducts(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetProduct handles GET /products/:id
func (cc *CatalogController) GetProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	p, err := cc.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProduct handles PUT /products/:id
func (cc *CatalogController) UpdateProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	var req models.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := cc.service.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProduct handles DELETE /products/:id
func (cc *CatalogController) DeleteProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if err := cc.service.DeleteProduct(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// CreateWarehouse handles POST /warehouses
func (cc *CatalogController) CreateWarehouse(c *gin.Context) {
	var req models.CreateWarehouseRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := cc.service.CreateWarehouse(c.Request.Context(), &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// ListWarehouses handles GET /warehouses
func (cc *CatalogController) ListWarehouses(c *gin.Context) {
	out, err := cc.service.ListWarehouses(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateInventory handles POST /inventory
func (cc *CatalogController) CreateInventory(c *gin.Context) {
	var req models.CreateInventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := cc.service.CreateInventory(c.Request.Context(), &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ListInventory handles GET /inventory
func (cc *CatalogController) ListInventory(c *gin.Context) {
	out, err := cc.service.ListInventory(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateInventory handles PUT /inventory/:id
func (cc *CatalogController) UpdateInventory(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	var req models.UpdateInventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := cc.service.UpdateInventory(c.Request.Context(), id, &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListInventoryByWarehouse handles GET /inventory/warehouse/:id
func (cc *CatalogController) ListInventoryByWarehouse(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	out, err := cc.service.ListInventoryByWarehouse(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListInventoryByProduct handles GET /inventory/product/:id
func (cc *CatalogController) ListInventoryByProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	out, err := cc.service.ListInventoryByProduct(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
