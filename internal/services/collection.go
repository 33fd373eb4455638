package services

import (
	"errors"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/notify"
	"storefront/internal/repositories"
)

// Storage keys of the persisted collections.
const (
	CartKey     = "cart"
	WishlistKey = "wishlist"
	OrdersKey   = "orders"
)

// ErrInvalidItem is returned when a mutation carries an item that breaks the collection's rules.
var ErrInvalidItem = errors.New("invalid item")

// Options holds the collaborators shared by the collection services.
type Options struct {
	Snapshots *repositories.SnapshotStore
	Sink      notify.Sink
	Clock     func() time.Time
	// SuppressMissingRemovals skips the removal notification when the id was not present.
	SuppressMissingRemovals bool
}

func (o Options) withDefaults() Options {
	if o.Snapshots == nil {
		o.Snapshots = repositories.NewSnapshotStore(repositories.NewMockSnapshotRepository())
	}
	if o.Sink == nil {
		o.Sink = notify.Discard
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// emitter publishes events once a mutation has committed. It must be called without holding the collection lock.
type emitter struct {
	collection string
	sink       notify.Sink
	clock      func() time.Time
}

func (e emitter) success(action, message string) {
	metrics.RecordMutation(e.collection, action, "applied")
	e.emit(notify.KindSuccess, action, message)
}

func (e emitter) failure(action, message string) {
	metrics.RecordMutation(e.collection, action, "rejected")
	e.emit(notify.KindError, action, message)
}

func (e emitter) noop(action string) {
	metrics.RecordMutation(e.collection, action, "noop")
}

func (e emitter) emit(kind notify.Kind, action, message string) {
	notify.Multi{e.sink}.Notify(notify.Event{
		Kind:       kind,
		Message:    message,
		Collection: e.collection,
		Action:     action,
		At:         e.clock(),
	})
}
