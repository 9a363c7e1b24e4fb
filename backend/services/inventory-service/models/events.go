package models

import "github.com/shopspring/decimal"

// OrderEventItem mirrors an OrderItem on the wire.
type OrderEventItem struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderEvent is published to orders-queue on creation and to
// order-confirmation-queue to request a confirmation. Only OrderID is
// required on the confirmation queue.
type OrderEvent struct {
	OrderID     string           `json:"order_id"`
	WarehouseID uint             `json:"warehouse_id,omitempty"`
	Items       []OrderEventItem `json:"items,omitempty"`
}

// NewOrderCreatedEvent snapshots o with the prices stored on its items.
func NewOrderCreatedEvent(o *Order) OrderEvent {
	items := make([]OrderEventItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return OrderEvent{OrderID: o.ExternalRef, WarehouseID: o.WarehouseID, Items: items}
}
