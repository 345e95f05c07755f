package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "pnjpremium/internal/app/outbox"
)

func TestSubscribeReceivesMatchingUpdates(t *testing.T) {
	hub := NewHub()
	var got []Update
	cancel := hub.Subscribe("bk-1", func(u Update) { got = append(got, u) })
	defer cancel()

	hub.Publish(Update{BookingID: "bk-1", Event: "booking.confirmed"})
	hub.Publish(Update{BookingID: "bk-other", Event: "booking.confirmed"})

	require.Len(t, got, 1)
	assert.Equal(t, "bk-1", got[0].BookingID)
}

func TestCancelIsIdempotent(t *testing.T) {
	hub := NewHub()
	count := 0
	cancel := hub.Subscribe("bk-1", func(Update) { count++ })
	require.Equal(t, 1, hub.SubscriberCount("bk-1"))

	cancel()
	cancel()
	cancel()
	assert.Equal(t, 0, hub.SubscriberCount("bk-1"))

	hub.Publish(Update{BookingID: "bk-1"})
	assert.Equal(t, 0, count)
}

func TestCancelRemovesOnlyItsSubscription(t *testing.T) {
	hub := NewHub()
	first, second := 0, 0
	cancelFirst := hub.Subscribe("bk-1", func(Update) { first++ })
	cancelSecond := hub.Subscribe("bk-1", func(Update) { second++ })
	defer cancelSecond()

	cancelFirst()
	hub.Publish(Update{BookingID: "bk-1"})

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestSinkForwardsOutboxRecords(t *testing.T) {
	hub := NewHub()
	var got []Update
	cancel := hub.Subscribe("bk-1", func(u Update) { got = append(got, u) })
	defer cancel()

	occurred := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)
	err := hub.Sink(context.Background(), []appoutbox.EventRecord{
		{ID: "ev-1", Name: "booking.requested", Aggregate: "bk-1", Payload: []byte(`{"x":1}`), OccurredAt: occurred},
		{ID: "ev-2", Name: "booking.requested", Aggregate: "bk-2", Payload: []byte(`{}`), OccurredAt: occurred},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "booking.requested", got[0].Event)
	assert.Equal(t, json.RawMessage(`{"x":1}`), got[0].Payload)
	assert.Equal(t, occurred, got[0].At)
}
