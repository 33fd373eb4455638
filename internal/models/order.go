package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Order represents a customer order for a single product.
type Order struct {
	ID                string          `json:"id" validate:"omitempty,max=64"`
	ProductID         string          `json:"productId" validate:"required"`
	Title             string          `json:"title" validate:"required,max=200"`
	Price             decimal.Decimal `json:"price"` // Unit price at the time of order
	Image             string          `json:"image"`
	Quantity          int             `json:"quantity" validate:"gte=1"`
	Status            OrderStatus     `json:"status"`
	OrderDate         time.Time       `json:"orderDate"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	ShippingAddress   string          `json:"shippingAddress,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	DeliveredDate     *time.Time      `json:"deliveredDate,omitempty"`
	CancelledDate     *time.Time      `json:"cancelledDate,omitempty"`
}

// Amount returns price times quantity, the value orders are ranked by.
func (o Order) Amount() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// ShipmentDetails carries the optional consumer-supplied fields applied when an order ships.
type ShipmentDetails struct {
	TrackingNumber    string     `json:"trackingNumber,omitempty" validate:"omitempty,max=64"`
	ShippingAddress   string     `json:"shippingAddress,omitempty" validate:"omitempty,max=500"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

// OrderStats counts orders per status.
type OrderStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Shipped   int `json:"shipped"`
	Delivered int `json:"delivered"`
	Cancelled int `json:"cancelled"`
}
