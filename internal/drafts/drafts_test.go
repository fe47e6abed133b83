package drafts

import (
	"context"
	"errors"
	"testing"
	"time"

	"offer-composer-api/internal/cache"
	"offer-composer-api/internal/models"
)

func testRecord() models.OfferRecord {
	return models.OfferRecord{
		OfferType:    models.OfferCashback,
		ValueType:    models.ValueFixed,
		Value:        20,
		MinSpend:     500,
		DurationDays: 7,
		OfferName:    "Big Spender Bonus",
	}
}

func TestCreateAndGet(t *testing.T) {
	store := NewStore(cache.NewMemoryStore(), time.Hour)

	draft, err := store.Create(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if draft.ID == "" {
		t.Error("Expected draft id to be assigned")
	}
	if draft.CreatedAt.IsZero() || draft.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}

	fetched, err := store.Get(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Record.OfferName != "Big Spender Bonus" {
		t.Errorf("Unexpected record: %+v", fetched.Record)
	}
	if fetched.Record.Value != 20 || fetched.Record.MinSpend != 500 {
		t.Errorf("Numbers did not round-trip: %+v", fetched.Record)
	}
}

func TestGet_Unknown(t *testing.T) {
	store := NewStore(cache.NewMemoryStore(), time.Hour)

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	store := NewStore(cache.NewMemoryStore(), time.Hour)

	draft, err := store.Create(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	edited := testRecord()
	edited.Value = 25
	edited.OfferName = "Bigger Spender Bonus"

	updated, err := store.Update(context.Background(), draft.ID, edited)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Record.Value != 25 || updated.Record.OfferName != "Bigger Spender Bonus" {
		t.Errorf("Edit not applied: %+v", updated.Record)
	}
	if updated.CreatedAt != draft.CreatedAt {
		t.Error("Expected CreatedAt preserved across updates")
	}
}

func TestUpdate_Unknown(t *testing.T) {
	store := NewStore(cache.NewMemoryStore(), time.Hour)

	_, err := store.Update(context.Background(), "nope", testRecord())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := NewStore(cache.NewMemoryStore(), time.Hour)

	draft, err := store.Create(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Delete(context.Background(), draft.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(context.Background(), draft.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	store := NewStore(cache.NewMemoryStore(), 10*time.Millisecond)

	draft, err := store.Create(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	if _, err := store.Get(context.Background(), draft.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after TTL, got %v", err)
	}
}
