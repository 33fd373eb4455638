package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"storefront/internal/models"
	"storefront/internal/query"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidTransition is returned when an order status change is not an edge of the order lifecycle.
var ErrInvalidTransition = errors.New("invalid order status transition")

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped: {models.OrderStatusDelivered},
}

// AllowedTransitions lists the statuses an order in status from may move to.
func AllowedTransitions(from models.OrderStatus) []models.OrderStatus {
	return append([]models.OrderStatus{}, transitions[from]...)
}

// CanTransition reports whether from -> to is an edge of the order lifecycle.
func CanTransition(from, to models.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ordersSchema v0 used orderStatus for the status and the product id as the order id.
var ordersSchema = repositories.Schema{
	Version: 1,
	Migrate: func(_ int, items json.RawMessage) (json.RawMessage, error) {
		return rewriteLegacy(items, func(row map[string]any) {
			if status, ok := row["orderStatus"]; ok {
				if _, has := row["status"]; !has {
					row["status"] = status
				}
				delete(row, "orderStatus")
			}
			if _, ok := row["productId"]; !ok {
				row["productId"] = row["id"]
			}
			for _, field := range []string{"orderDate", "estimatedDelivery", "deliveredDate", "cancelledDate"} {
				if v, ok := row[field]; ok {
					row[field] = legacyTime(v)
				}
			}
		})
	},
}

// OrderService owns the order history, most recent first.
type OrderService struct {
	mu        sync.Mutex
	orders    []models.Order
	snapshots *repositories.SnapshotStore
	events    emitter
	opts      Options
	validate  *validator.Validate
}

// NewOrderService creates an OrderService and restores the last persisted orders.
func NewOrderService(opts Options) *OrderService {
	opts = opts.withDefaults()
	s := &OrderService{
		snapshots: opts.Snapshots,
		events:    emitter{collection: OrdersKey, sink: opts.Sink, clock: opts.Clock},
		opts:      opts,
		validate:  validator.New(),
	}

	var stored []models.Order
	if opts.Snapshots.Load(OrdersKey, ordersSchema, &stored) {
		for _, o := range stored {
			if !o.Status.Valid() {
				log.Printf("Dropping stored order %q with unknown status %q", o.ID, o.Status)
				continue
			}
			if o.Price.IsNegative() || o.Quantity < 1 {
				log.Printf("Dropping stored order %q with price %s and quantity %d", o.ID, o.Price, o.Quantity)
				continue
			}
			s.orders = append(s.orders, o)
		}
	}
	return s
}

// Orders returns a copy of every order, most recent first.
func (s *OrderService) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Order{}, s.orders...)
}

// Order returns the order with the given id.
func (s *OrderService) Order(id string) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.orders[i], true
	}
	return models.Order{}, false
}

// Stats counts orders per status.
func (s *OrderService) Stats() models.OrderStats {
	orders := s.Orders()
	counts := query.CountBy(orders, func(o models.Order) models.OrderStatus { return o.Status })
	return models.OrderStats{
		Total:     len(orders),
		Pending:   counts[models.OrderStatusPending],
		Shipped:   counts[models.OrderStatusShipped],
		Delivered: counts[models.OrderStatusDelivered],
		Cancelled: counts[models.OrderStatusCancelled],
	}
}

// AddOrder records a new pending order at the head of the history and returns it.
func (s *OrderService) AddOrder(order models.Order) (models.Order, error) {
	added, err := s.AddOrders([]models.Order{order})
	if err != nil {
		return models.Order{}, err
	}
	return added[0], nil
}

// AddOrders records several pending orders with a single write. The first
// order ends up most recent.
func (s *OrderService) AddOrders(orders []models.Order) ([]models.Order, error) {
	if len(orders) == 0 {
		return nil, nil
	}
	now := s.opts.Clock()
	prepared := make([]models.Order, len(orders))
	for i, o := range orders {
		if err := s.validate.Struct(o); err != nil {
			return nil, err
		}
		if o.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price of %q must not be negative", ErrInvalidItem, o.ProductID)
		}
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		o.Status = models.OrderStatusPending
		o.OrderDate = now
		o.DeliveredDate = nil
		o.CancelledDate = nil
		prepared[i] = o
	}

	s.mu.Lock()
	for _, o := range prepared {
		if s.indexOf(o.ID) >= 0 {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: order %q already exists", ErrInvalidItem, o.ID)
		}
	}
	s.orders = append(append(make([]models.Order, 0, len(prepared)+len(s.orders)), prepared...), s.orders...)
	s.persistLocked()
	s.mu.Unlock()

	for range prepared {
		s.events.success("add", "Order added successfully")
	}
	return prepared, nil
}

// UpdateStatus moves the order to status. An unknown id is a no-op. details,
// when set, are applied on the move to shipped.
func (s *OrderService) UpdateStatus(id string, status models.OrderStatus, details *models.ShipmentDetails) (bool, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.events.noop("update-status")
		return false, nil
	}
	from := s.orders[i].Status
	if !CanTransition(from, status) {
		s.mu.Unlock()
		err := fmt.Errorf("%w: order %s cannot move from %s to %s", ErrInvalidTransition, id, from, status)
		s.events.failure("update-status", fmt.Sprintf("Order %s cannot be marked %s", id, status))
		return false, err
	}

	o := &s.orders[i]
	o.Status = status
	now := s.opts.Clock()
	switch status {
	case models.OrderStatusShipped:
		if details != nil {
			if details.TrackingNumber != "" {
				o.TrackingNumber = details.TrackingNumber
			}
			if details.ShippingAddress != "" {
				o.ShippingAddress = details.ShippingAddress
			}
			if details.EstimatedDelivery != nil {
				eta := *details.EstimatedDelivery
				o.EstimatedDelivery = &eta
			}
		}
	case models.OrderStatusDelivered:
		o.DeliveredDate = &now
	case models.OrderStatusCancelled:
		o.CancelledDate = &now
	}
	s.persistLocked()
	s.mu.Unlock()

	s.events.success("update-status", fmt.Sprintf("Order %s marked %s", id, status))
	return true, nil
}

// Clear removes every order.
func (s *OrderService) Clear() {
	s.mu.Lock()
	s.orders = nil
	s.snapshots.Delete(OrdersKey)
	s.mu.Unlock()

	s.events.success("clear", "Orders cleared")
}

func (s *OrderService) indexOf(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *OrderService) persistLocked() {
	orders := s.orders
	if orders == nil {
		orders = []models.Order{}
	}
	s.snapshots.Save(OrdersKey, ordersSchema, orders)
}
