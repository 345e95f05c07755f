package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnjpremium/internal/app/commands"
	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
)

type keyedCommand struct {
	key string
}

func (c keyedCommand) Key() string            { return "middleware.keyed" }
func (c keyedCommand) IdempotencyKey() string { return c.key }
func (c keyedCommand) ResultPrototype() any   { return &keyedResult{} }

type keyedResult struct {
	Value string `json:"value"`
}

type keyedHandler struct {
	calls  int
	errs   []error
	result *keyedResult
}

func (h *keyedHandler) Handle(ctx context.Context, cmd keyedCommand) (*keyedResult, error) {
	h.calls++
	if len(h.errs) > 0 {
		err := h.errs[0]
		h.errs = h.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return h.result, nil
}

type mapStore struct {
	items map[string]IdempotencyRecord
}

func newMapStore() *mapStore {
	return &mapStore{items: make(map[string]IdempotencyRecord)}
}

func (s *mapStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s.items[rec.Key] = rec
	return nil
}

func keyedBus(handler *keyedHandler, store IdempotencyStore) commands.Bus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, keyedCommand{}.Key(), handler)
	return ChainCommands(bus, Idempotency(store, nil))
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	ctx := context.Background()
	handler := &keyedHandler{result: &keyedResult{Value: "first"}}
	bus := keyedBus(handler, newMapStore())

	first, err := commands.Dispatch[keyedCommand, *keyedResult](ctx, bus, keyedCommand{key: "k1"})
	require.NoError(t, err)

	handler.result = &keyedResult{Value: "second"}
	replay, err := commands.Dispatch[keyedCommand, *keyedResult](ctx, bus, keyedCommand{key: "k1"})
	require.NoError(t, err)

	assert.Equal(t, first.Value, replay.Value)
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencyRetriesAfterTransientFailure(t *testing.T) {
	ctx := context.Background()
	handler := &keyedHandler{
		errs:   []error{uow.ErrBackendUnavailable},
		result: &keyedResult{Value: "recovered"},
	}
	store := newMapStore()
	bus := keyedBus(handler, store)

	_, err := commands.Dispatch[keyedCommand, *keyedResult](ctx, bus, keyedCommand{key: "k1"})
	require.ErrorIs(t, err, uow.ErrBackendUnavailable)
	assert.Empty(t, store.items, "an outage must not claim the key")

	// the retry with the same key re-executes and succeeds
	result, err := commands.Dispatch[keyedCommand, *keyedResult](ctx, bus, keyedCommand{key: "k1"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Value)
	assert.Equal(t, 2, handler.calls)
}

func TestIdempotencyDoesNotCacheLostRaces(t *testing.T) {
	ctx := context.Background()
	handler := &keyedHandler{
		errs:   []error{uow.ErrConcurrentUpdate},
		result: &keyedResult{Value: "won"},
	}
	bus := keyedBus(handler, newMapStore())

	_, err := commands.Dispatch[keyedCommand, *keyedResult](ctx, bus, keyedCommand{key: "k1"})
	require.ErrorIs(t, err, uow.ErrConcurrentUpdate)

	result, err := commands.Dispatch[keyedCommand, *keyedResult](ctx, bus, keyedCommand{key: "k1"})
	require.NoError(t, err)
	assert.Equal(t, "won", result.Value)
	assert.Equal(t, 2, handler.calls)
}

func TestIdempotencyReplayedErrorKeepsSentinel(t *testing.T) {
	ctx := context.Background()
	handler := &keyedHandler{
		errs:   []error{domainbooking.ErrSlotUnavailable},
		result: &keyedResult{Value: "never"},
	}
	bus := keyedBus(handler, newMapStore())

	_, err := commands.Dispatch[keyedCommand, *keyedResult](ctx, bus, keyedCommand{key: "k1"})
	require.ErrorIs(t, err, domainbooking.ErrSlotUnavailable)

	// the replay keeps errors.Is identity so callers map it the same way
	_, err = commands.Dispatch[keyedCommand, *keyedResult](ctx, bus, keyedCommand{key: "k1"})
	require.ErrorIs(t, err, domainbooking.ErrSlotUnavailable)
	assert.Equal(t, 1, handler.calls, "a deterministic failure must not re-execute")
}

func TestIdempotencyPersistsDeterministicFailureKind(t *testing.T) {
	ctx := context.Background()
	handler := &keyedHandler{errs: []error{domainbooking.ErrInvalidDuration}}
	store := newMapStore()
	bus := keyedBus(handler, store)

	_, err := commands.Dispatch[keyedCommand, *keyedResult](ctx, bus, keyedCommand{key: "k1"})
	require.ErrorIs(t, err, domainbooking.ErrInvalidDuration)

	rec, ok := store.items["k1"]
	require.True(t, ok)
	assert.Equal(t, "booking.invalid_duration", rec.ErrorKind)
	assert.WithinDuration(t, time.Now().UTC(), rec.OccurredAt, time.Minute)
}
