// Package drafts parks offer records between extraction and publish while
// the operator reviews and edits them. This replaces the original tool's
// implicit UI-session state with explicit, TTL-bounded server-side state.
package drafts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"offer-composer-api/internal/cache"
	"offer-composer-api/internal/models"
)

// ErrNotFound is returned when a draft id is unknown or expired.
var ErrNotFound = errors.New("draft not found")

// Store manages draft lifecycle on top of a cache backend.
type Store struct {
	backend cache.Store
	ttl     time.Duration
}

// NewStore creates a draft store. Every write refreshes the TTL.
func NewStore(backend cache.Store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{backend: backend, ttl: ttl}
}

func draftKey(id string) string {
	return "draft:" + id
}

// Create stores a new draft for the given record and returns it.
func (s *Store) Create(ctx context.Context, rec models.OfferRecord) (models.Draft, error) {
	now := time.Now().UTC()
	draft := models.Draft{
		ID:        uuid.New().String(),
		Record:    rec,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := cache.SetJSON(ctx, s.backend, draftKey(draft.ID), draft, s.ttl); err != nil {
		return models.Draft{}, err
	}

	return draft, nil
}

// Get returns the draft for id.
func (s *Store) Get(ctx context.Context, id string) (models.Draft, error) {
	var draft models.Draft
	err := cache.GetJSON(ctx, s.backend, draftKey(id), &draft)
	if errors.Is(err, cache.ErrNotFound) {
		return models.Draft{}, ErrNotFound
	}
	if err != nil {
		return models.Draft{}, err
	}
	return draft, nil
}

// Update replaces the draft's record and refreshes its TTL.
func (s *Store) Update(ctx context.Context, id string, rec models.OfferRecord) (models.Draft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return models.Draft{}, err
	}

	draft.Record = rec
	draft.UpdatedAt = time.Now().UTC()

	if err := cache.SetJSON(ctx, s.backend, draftKey(id), draft, s.ttl); err != nil {
		return models.Draft{}, err
	}

	return draft, nil
}

// Delete removes a draft, typically after a successful publish.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, draftKey(id))
}
