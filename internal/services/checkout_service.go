package services

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"storefront/internal/models"

	"golang.org/x/sync/singleflight"
)

// ErrEmptyCart is returned when checkout is requested for an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

const checkoutKey = "checkout"

// CheckoutResult is the outcome of a completed checkout.
type CheckoutResult struct {
	Orders []models.Order     `json:"orders"`
	Totals models.CartTotals `json:"totals"`
}

// OrderRecorder stores the pending orders produced by a checkout.
type OrderRecorder interface {
	AddOrders(orders []models.Order) ([]models.Order, error)
}

// CheckoutService turns the cart into pending orders after a simulated processing delay.
type CheckoutService struct {
	cart   *CartService
	orders OrderRecorder
	delay  time.Duration
	group  singleflight.Group
	// committing is set once the running checkout has started draining the cart.
	committing atomic.Bool
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(cart *CartService, orders OrderRecorder, delay time.Duration) *CheckoutService {
	return &CheckoutService{cart: cart, orders: orders, delay: delay}
}

// Checkout waits for the processing delay, then drains the cart into pending
// orders. Callers arriving while a checkout is running join it and get its
// result, so one submission clears the cart at most once.
//
// Cancelling ctx during the delay aborts without touching the cart. Once the
// cart is being drained the checkout completes and its result is returned
// even if ctx is done. A caller whose joined checkout was aborted by another
// caller's cancellation starts a new one.
func (s *CheckoutService) Checkout(ctx context.Context) (CheckoutResult, error) {
	for {
		if len(s.cart.Lines()) == 0 {
			return CheckoutResult{}, ErrEmptyCart
		}
		result, err := s.await(ctx)
		if isCancellation(err) && ctx.Err() == nil {
			log.Printf("Joined checkout was cancelled by another request, starting a new one")
			continue
		}
		return result, err
	}
}

func (s *CheckoutService) await(ctx context.Context) (CheckoutResult, error) {
	ch := s.group.DoChan(checkoutKey, func() (interface{}, error) {
		return s.run(ctx)
	})
	select {
	case res := <-ch:
		return flightResult(res)
	case <-ctx.Done():
	}

	select {
	case res := <-ch:
		return flightResult(res)
	default:
	}
	if s.committing.Load() {
		return flightResult(<-ch)
	}
	return CheckoutResult{}, ctx.Err()
}

func flightResult(res singleflight.Result) (CheckoutResult, error) {
	if res.Err != nil {
		return CheckoutResult{}, res.Err
	}
	if res.Shared {
		log.Printf("Checkout request joined an in-flight checkout")
	}
	return res.Val.(CheckoutResult), nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *CheckoutService) run(ctx context.Context) (CheckoutResult, error) {
	s.committing.Store(false)
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return CheckoutResult{}, ctx.Err()
		}
	}

	// Waiters that see committing after their ctx is done wait for the result.
	s.committing.Store(true)
	if err := ctx.Err(); err != nil {
		s.committing.Store(false)
		return CheckoutResult{}, err
	}

	lines := s.cart.drainIfAny()
	if len(lines) == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}

	pending := make([]models.Order, 0, len(lines))
	for _, l := range lines {
		pending = append(pending, models.Order{
			ProductID: l.ID,
			Title:     l.Title,
			Price:     l.Price,
			Image:     l.Image,
			Quantity:  l.Quantity,
		})
	}
	created, err := s.orders.AddOrders(pending)
	if err != nil {
		log.Printf("Failed to record orders for checkout, restoring cart: %v", err)
		s.cart.restore(lines)
		return CheckoutResult{}, err
	}
	s.cart.announceCleared()
	return CheckoutResult{Orders: created, Totals: ComputeTotals(lines)}, nil
}
