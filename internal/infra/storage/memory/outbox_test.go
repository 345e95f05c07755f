package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "pnjpremium/internal/app/outbox"
	"pnjpremium/internal/app/uow"
)

func record(id, aggregate string) appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         id,
		Name:       "booking.requested",
		Aggregate:  aggregate,
		Payload:    []byte(`{}`),
		OccurredAt: time.Now().UTC(),
	}
}

func TestOutboxPublishesOnlyAfterCommit(t *testing.T) {
	ctx := context.Background()
	f := newFactory()

	var delivered []appoutbox.EventRecord
	box := NewOutbox(func(ctx context.Context, records []appoutbox.EventRecord) error {
		delivered = append(delivered, records...)
		return nil
	})

	unit := begin(t, f)
	unitCtx := uow.ContextWithUnitOfWork(ctx, unit)
	require.NoError(t, unit.Bookings().Save(unitCtx, newBooking(t, "bk-1")))
	require.NoError(t, box.Add(unitCtx, record("ev-1", "bk-1")))
	require.NoError(t, box.Flush(unitCtx))
	assert.Empty(t, delivered, "nothing may surface before the unit commits")

	require.NoError(t, unit.Commit(unitCtx))
	require.Len(t, delivered, 1)
	assert.Equal(t, "bk-1", delivered[0].Aggregate)
}

func TestOutboxDropsEventsOfLosingCommit(t *testing.T) {
	ctx := context.Background()
	f := newFactory()

	var delivered []appoutbox.EventRecord
	box := NewOutbox(func(ctx context.Context, records []appoutbox.EventRecord) error {
		delivered = append(delivered, records...)
		return nil
	})

	seed := begin(t, f)
	require.NoError(t, seed.Bookings().Save(ctx, newBooking(t, "bk-1")))
	require.NoError(t, seed.Commit(ctx))

	winner := begin(t, f)
	winnerCtx := uow.ContextWithUnitOfWork(ctx, winner)
	loser := begin(t, f)
	loserCtx := uow.ContextWithUnitOfWork(ctx, loser)

	w, err := winner.Bookings().ByID(winnerCtx, "bk-1")
	require.NoError(t, err)
	l, err := loser.Bookings().ByID(loserCtx, "bk-1")
	require.NoError(t, err)

	require.NoError(t, w.Accept(time.Now()))
	w.ClearEvents()
	require.NoError(t, winner.Bookings().Save(winnerCtx, w))
	require.NoError(t, box.Add(winnerCtx, record("ev-winner", "bk-1")))

	require.NoError(t, l.Reject(time.Now()))
	l.ClearEvents()
	require.NoError(t, loser.Bookings().Save(loserCtx, l))
	require.NoError(t, box.Add(loserCtx, record("ev-loser", "bk-1")))

	require.NoError(t, winner.Commit(winnerCtx))
	require.ErrorIs(t, loser.Commit(loserCtx), uow.ErrConcurrentUpdate)

	require.Len(t, delivered, 1)
	assert.Equal(t, "ev-winner", delivered[0].ID)
}

func TestOutboxRollbackDiscardsEvents(t *testing.T) {
	ctx := context.Background()
	f := newFactory()

	var delivered []appoutbox.EventRecord
	box := NewOutbox(func(ctx context.Context, records []appoutbox.EventRecord) error {
		delivered = append(delivered, records...)
		return nil
	})

	unit := begin(t, f)
	unitCtx := uow.ContextWithUnitOfWork(ctx, unit)
	require.NoError(t, box.Add(unitCtx, record("ev-1", "bk-1")))
	require.NoError(t, unit.Rollback(unitCtx))
	require.NoError(t, unit.Commit(unitCtx))

	assert.Empty(t, delivered)
}

func TestOutboxDeliversDirectlyOutsideUnit(t *testing.T) {
	ctx := context.Background()

	var delivered []appoutbox.EventRecord
	box := NewOutbox(func(ctx context.Context, records []appoutbox.EventRecord) error {
		delivered = append(delivered, records...)
		return nil
	})

	require.NoError(t, box.Add(ctx, record("ev-1", "bk-1")))
	require.Len(t, delivered, 1)
}
