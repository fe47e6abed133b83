package events

import (
	"context"
	"sync"
	"time"

	"offer-composer-api/internal/models"
)

// EventType represents the type of event.
type EventType string

const (
	// EventOfferExtracted is emitted when a description is turned into a draft
	EventOfferExtracted EventType = "offer.extracted"
	// EventOfferPublished is emitted after a publish attempt, success or not
	EventOfferPublished EventType = "offer.published"
	// EventSessionRefreshed is emitted when the LMS session is re-established
	EventSessionRefreshed EventType = "session.refreshed"
)

// Event represents an event in the system.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// OfferExtractedData contains data for extraction events.
type OfferExtractedData struct {
	DraftID string
	Record  models.OfferRecord
}

// OfferPublishedData contains data for publish events.
type OfferPublishedData struct {
	Record  models.OfferRecord
	Outcome string
	Detail  string
}

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Manager manages event handlers and event publishing.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	enabled  bool
}

// NewManager creates a new event manager.
func NewManager(enabled bool) *Manager {
	return &Manager{
		handlers: make(map[EventType][]Handler),
		enabled:  enabled,
	}
}

// Subscribe subscribes a handler to a specific event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish publishes an event to all subscribed handlers.
func (m *Manager) Publish(ctx context.Context, eventType EventType, data interface{}) {
	if !m.enabled {
		return
	}

	m.mu.RLock()
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	// Handlers run asynchronously so the pipeline never blocks on hooks
	for _, handler := range handlers {
		go func(h Handler) {
			_ = h(ctx, event)
		}(handler)
	}
}

// PublishOfferExtracted publishes an extraction event.
func (m *Manager) PublishOfferExtracted(ctx context.Context, draftID string, rec models.OfferRecord) {
	m.Publish(ctx, EventOfferExtracted, OfferExtractedData{DraftID: draftID, Record: rec})
}

// PublishOfferPublished publishes a publish-attempt event.
func (m *Manager) PublishOfferPublished(ctx context.Context, rec models.OfferRecord, outcome, detail string) {
	m.Publish(ctx, EventOfferPublished, OfferPublishedData{
		Record:  rec,
		Outcome: outcome,
		Detail:  detail,
	})
}

// Shutdown shuts down the event manager.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enabled = false
	m.handlers = make(map[EventType][]Handler)
}
