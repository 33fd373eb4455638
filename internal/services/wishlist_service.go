package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// wishlistSchema v0 stored dateAdded as a millisecond epoch.
var wishlistSchema = repositories.Schema{
	Version: 1,
	Migrate: func(_ int, items json.RawMessage) (json.RawMessage, error) {
		return rewriteLegacy(items, func(row map[string]any) {
			if v, ok := row["dateAdded"]; ok {
				row["dateAdded"] = legacyTime(v)
			}
		})
	},
}

// WishlistService owns the saved products. Each product id appears at most once.
type WishlistService struct {
	mu        sync.Mutex
	entries   []models.WishlistEntry
	snapshots *repositories.SnapshotStore
	events    emitter
	opts      Options
	validate  *validator.Validate
}

// NewWishlistService creates a WishlistService and restores the last persisted wishlist.
func NewWishlistService(opts Options) *WishlistService {
	opts = opts.withDefaults()
	s := &WishlistService{
		snapshots: opts.Snapshots,
		events:    emitter{collection: WishlistKey, sink: opts.Sink, clock: opts.Clock},
		opts:      opts,
		validate:  validator.New(),
	}

	var stored []models.WishlistEntry
	if opts.Snapshots.Load(WishlistKey, wishlistSchema, &stored) {
		seen := make(map[string]bool, len(stored))
		for _, e := range stored {
			if e.ID == "" || seen[e.ID] || e.Price.IsNegative() {
				continue
			}
			seen[e.ID] = true
			s.entries = append(s.entries, e)
		}
	}
	return s
}

// Entries returns a copy of the wishlist in insertion order.
func (s *WishlistService) Entries() []models.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WishlistEntry{}, s.entries...)
}

// Entry returns the entry with the given id.
func (s *WishlistService) Entry(id string) (models.WishlistEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i], true
	}
	return models.WishlistEntry{}, false
}

// Contains reports whether the product is on the wishlist.
func (s *WishlistService) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Add inserts the entry and stamps DateAdded. Adding an id that is already
// present is rejected: nothing changes and false is returned.
func (s *WishlistService) Add(entry models.WishlistEntry) (bool, error) {
	if err := s.validate.Struct(entry); err != nil {
		return false, err
	}
	if entry.Price.IsNegative() {
		return false, fmt.Errorf("%w: price of %q must not be negative", ErrInvalidItem, entry.ID)
	}

	s.mu.Lock()
	if s.indexOf(entry.ID) >= 0 {
		s.mu.Unlock()
		s.events.noop("add")
		return false, nil
	}
	entry.DateAdded = s.opts.Clock()
	s.entries = append(s.entries, entry)
	s.persistLocked()
	s.mu.Unlock()

	s.events.success("add", fmt.Sprintf("%s added to wishlist", entry.Title))
	return true, nil
}

// Remove deletes the entry with the given id. Removing an absent id is a no-op.
func (s *WishlistService) Remove(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
		s.persistLocked()
	}
	s.mu.Unlock()

	if i < 0 {
		s.events.noop("remove")
		if s.opts.SuppressMissingRemovals {
			return false
		}
	}
	s.events.success("remove", "Item removed from wishlist")
	return i >= 0
}

// Clear empties the wishlist.
func (s *WishlistService) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.snapshots.Delete(WishlistKey)
	s.mu.Unlock()

	s.events.success("clear", "Wishlist cleared")
}

func (s *WishlistService) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *WishlistService) persistLocked() {
	entries := s.entries
	if entries == nil {
		entries = []models.WishlistEntry{}
	}
	s.snapshots.Save(WishlistKey, wishlistSchema, entries)
}
