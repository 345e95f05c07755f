package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnjpremium/internal/app/middleware"
)

func TestIdempotencyStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(time.Hour)

	_, found, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, found)

	rec := middleware.IdempotencyRecord{
		Key:        "key-1",
		Payload:    []byte(`{"booking_id":"bk-1"}`),
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, rec))

	got, found, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.Payload, got.Payload)
}

func TestIdempotencyStoreExpiresRecords(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(time.Minute)

	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{
		Key:        "key-1",
		Payload:    []byte(`{}`),
		OccurredAt: time.Now().UTC().Add(-2 * time.Minute),
	}))

	_, found, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIdempotencyStoreZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(0)

	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{
		Key:        "key-1",
		OccurredAt: time.Now().UTC().Add(-24 * time.Hour),
	}))

	_, found, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, found)
}
