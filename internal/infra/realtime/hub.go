package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	appoutbox "pnjpremium/internal/app/outbox"
)

// Update is one booking status notification delivered to subscribers.
type Update struct {
	BookingID string          `json:"booking_id"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	At        time.Time       `json:"at"`
}

// Hub fans booking events out to interested subscribers. Subscription is
// explicit per booking; the returned cancel func is safe to call more than
// once.
type Hub struct {
	mu   sync.RWMutex
	next uint64
	subs map[string]map[uint64]func(Update)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]func(Update))}
}

// Subscribe registers a callback for one booking's updates. The callback runs
// on the publishing goroutine and must not block.
func (h *Hub) Subscribe(bookingID string, fn func(Update)) (cancel func()) {
	h.mu.Lock()
	h.next++
	id := h.next
	byID, ok := h.subs[bookingID]
	if !ok {
		byID = make(map[uint64]func(Update))
		h.subs[bookingID] = byID
	}
	byID[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			byID, ok := h.subs[bookingID]
			if !ok {
				return
			}
			delete(byID, id)
			if len(byID) == 0 {
				delete(h.subs, bookingID)
			}
		})
	}
}

// SubscriberCount reports active subscriptions for a booking.
func (h *Hub) SubscriberCount(bookingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[bookingID])
}

// Publish delivers an update to every subscriber of its booking.
func (h *Hub) Publish(u Update) {
	h.mu.RLock()
	callbacks := make([]func(Update), 0, len(h.subs[u.BookingID]))
	for _, fn := range h.subs[u.BookingID] {
		callbacks = append(callbacks, fn)
	}
	h.mu.RUnlock()
	for _, fn := range callbacks {
		fn(u)
	}
}

// Sink adapts the hub to the memory outbox: flushed event records become
// updates keyed by the booking aggregate.
func (h *Hub) Sink(ctx context.Context, records []appoutbox.EventRecord) error {
	for _, rec := range records {
		h.Publish(Update{
			BookingID: rec.Aggregate,
			Event:     rec.Name,
			Payload:   json.RawMessage(rec.Payload),
			At:        rec.OccurredAt,
		})
	}
	return nil
}
