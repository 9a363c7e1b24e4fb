package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusReserved  OrderStatus = "reserved"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusFailed    OrderStatus = "failed"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:   {OrderStatusReserved, OrderStatusConfirmed, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusReserved:  {OrderStatusConfirmed, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusConfirmed: {OrderStatusFulfilled, OrderStatusCancelled, OrderStatusFailed},
}

// ParseOrderStatus accepts any case; an empty string is not a status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case OrderStatusCreated, OrderStatusReserved, OrderStatusConfirmed,
		OrderStatusFulfilled, OrderStatusCancelled, OrderStatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StatusesReaching lists the statuses with a direct transition to target.
func StatusesReaching(target OrderStatus) []OrderStatus {
	var from []OrderStatus
	for _, s := range []OrderStatus{OrderStatusCreated, OrderStatusReserved, OrderStatusConfirmed} {
		if s.CanTransitionTo(target) {
			from = append(from, s)
		}
	}
	return from
}

// Order is a request to move items out of a warehouse.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	ExternalRef string      `gorm:"size:64;uniqueIndex;not null" json:"external_ref"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	WarehouseID uint        `gorm:"not null;index" json:"warehouse_id"`
	Warehouse   *Warehouse  `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	InvoiceRef  *string     `gorm:"size:512" json:"invoice_ref"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one line of an order. Price is the unit price at order time.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderTotal sums quantity x price over items.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// NewExternalRef builds ORD-<yyyymmddhhmmss>-<8 hex>.
func NewExternalRef(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102150405"), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	Price     decimal.Decimal `json:"price"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	WarehouseID uint               `json:"warehouse_id" validate:"required"`
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}
