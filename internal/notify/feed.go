package notify

import "sync"

// Feed keeps the most recent notifications in memory so a UI can poll them as toasts.
type Feed struct {
	mu     sync.Mutex
	events []Event
	size   int
	seq    uint64
}

// FeedEntry is a notification with its position in the feed.
type FeedEntry struct {
	Seq uint64 `json:"seq"`
	Event
}

// NewFeed creates a Feed holding at most size events.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 50
	}
	return &Feed{size: size}
}

// Notify appends the event, evicting the oldest one when full.
func (f *Feed) Notify(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	if len(f.events) == f.size {
		copy(f.events, f.events[1:])
		f.events = f.events[:f.size-1]
	}
	f.events = append(f.events, event)
}

// Since returns the events with a sequence number greater than after, oldest first.
func (f *Feed) Since(after uint64) []FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	first := f.seq - uint64(len(f.events)) + 1
	entries := make([]FeedEntry, 0, len(f.events))
	for i, e := range f.events {
		seq := first + uint64(i)
		if seq > after {
			entries = append(entries, FeedEntry{Seq: seq, Event: e})
		}
	}
	return entries
}
