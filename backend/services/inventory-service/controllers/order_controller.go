package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/models"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/services"
)

// OrderController handles HTTP requests for orders
type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder handles POST /orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Order created",
		"order_id":     order.ID,
		"external_ref": order.ExternalRef,
		"status":       order.Status,
		"total":        models.OrderTotal(order.Items),
		"order":        order,
	})
}

// GetOrders handles GET /orders?page=&limit=&status=
func (oc *OrderController) GetOrders(c *gin.Context) {
	page, limit := parsePaginationParams(c)
	resp, err := oc.orderService.ListOrders(c.Request.Context(), page, limit, c.Query("status"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetOrderByID handles GET /orders/:id
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	order, err := oc.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder handles DELETE /orders/:id
func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if err := oc.orderService.CancelOrder(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted", "order_id": id})
}

// ConfirmOrder handles POST /orders/:id/confirm. Confirmation runs in the
// worker, so the request is accepted rather than completed.
func (oc *OrderController) ConfirmOrder(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if err := oc.orderService.RequestConfirmation(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Confirmation requested", "order_id": id})
}

// FulfillOrder handles POST /orders/:id/fulfill
func (oc *OrderController) FulfillOrder(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	order, err := oc.orderService.FulfillOrder(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
