package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/auth"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/controllers"
)

// Controllers groups the handlers mounted by RegisterRoutes.
type Controllers struct {
	Auth    *controllers.AuthController
	Catalog *controllers.CatalogController
	Orders  *controllers.OrderController
}

// RegisterRoutes registers every API route behind its role gate.
func RegisterRoutes(r *gin.Engine, guard *auth.Guard, ctrl Controllers) {
	admin := auth.RequireRole(guard, auth.RoleAdmin)
	staff := auth.RequireRole(guard, auth.RoleAdmin, auth.RoleWarehouse)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", ctrl.Auth.Login)
		authGroup.GET("/me", auth.RequireRole(guard), ctrl.Auth.Me)
	}

	suppliers := r.Group("/suppliers")
	{
		suppliers.POST("", admin, ctrl.Catalog.CreateSupplier)
		suppliers.GET("", staff, ctrl.Catalog.ListSuppliers)
	}

	products := r.Group("/products")
	{
		products.GET("", staff, ctrl.Catalog.ListProducts)
		products.GET("/:id", staff, ctrl.Catalog.GetProduct)
		products.POST("", admin, ctrl.Catalog.CreateProduct)
		products.PUT("/:id", admin, ctrl.Catalog.UpdateProduct)
		products.DELETE("/:id", admin, ctrl.Catalog.DeleteProduct)
	}

	warehouses := r.Group("/warehouses")
	{
		warehouses.POST("", admin, ctrl.Catalog.CreateWarehouse)
		warehouses.GET("", staff, ctrl.Catalog.ListWarehouses)
	}

	inventory := r.Group("/inventory", staff)
	{
		inventory.POST("", ctrl.Catalog.CreateInventory)
		inventory.GET("", ctrl.Catalog.ListInventory)
		inventory.PUT("/:id", ctrl.Catalog.UpdateInventory)
		inventory.GET("/warehouse/:id", ctrl.Catalog.ListInventoryByWarehouse)
		inventory.GET("/product/:id", ctrl.Catalog.ListInventoryByProduct)
	}

	orders := r.Group("/orders")
	{
		orders.POST("", staff, ctrl.Orders.CreateOrder)
		orders.GET("", staff, ctrl.Orders.GetOrders)
		orders.GET("/:id", staff, ctrl.Orders.GetOrderByID)
		orders.POST("/:id/fulfill", staff, ctrl.Orders.FulfillOrder)
		orders.DELETE("/:id", admin, ctrl.Orders.CancelOrder)
		orders.POST("/:id/confirm", admin, ctrl.Orders.ConfirmOrder)
	}
}
