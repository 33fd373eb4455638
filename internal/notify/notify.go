// Package notify carries user-facing acknowledgement events out of the
// collection services. Sinks are observational: they never fail the caller.
package notify

import "time"

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Event is one notification emitted after a mutation committed.
type Event struct {
	Kind       Kind      `json:"kind"`
	Message    string    `json:"message"`
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	At         time.Time `json:"at"`
}

// Sink receives notifications. Implementations must not block for long and must not panic.
type Sink interface {
	Notify(event Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event Event)

// Notify calls f(event).
func (f SinkFunc) Notify(event Event) { f(event) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans a notification out to every sink in order.
type Multi []Sink

// Notify forwards event to each sink, isolating panics so one sink cannot break the others.
func (m Multi) Notify(event Event) {
	for _, s := range m {
		if s == nil {
			continue
		}
		safeNotify(s, event)
	}
}

func safeNotify(s Sink, event Event) {
	defer func() { _ = recover() }()
	s.Notify(event)
}
