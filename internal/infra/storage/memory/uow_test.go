package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
	domainchat "pnjpremium/internal/domain/chat"
	domainpricing "pnjpremium/internal/domain/pricing"
	domainprovider "pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/money"
	"pnjpremium/internal/domain/shared/timeofday"
)

func newFactory() Factory {
	return Factory{
		Providers:     NewProviderStore(),
		Bookings:      NewBookingStore(),
		Conversations: NewConversationStore(),
	}
}

func newBooking(t *testing.T, id string) *domainbooking.Booking {
	t.Helper()
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:       domainbooking.BookingID(id),
		PlayerID: "player-1",
		PNJ: &domainprovider.Provider{
			ID:         "pnj-1",
			HourlyRate: money.Must(2500, "EUR"),
		},
		Date:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		Start:     timeofday.Minutes(14 * 60),
		Duration:  60,
		FeeRate:   domainpricing.DefaultFeeRate,
		ChatID:    "chat-" + id,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	b.ClearEvents()
	return b
}

func begin(t *testing.T, f Factory) uow.UnitOfWork {
	t.Helper()
	unit, err := f.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return unit
}

func TestCommitAppliesStagedWrites(t *testing.T) {
	ctx := context.Background()
	f := newFactory()

	unit := begin(t, f)
	b := newBooking(t, "bk-1")
	require.NoError(t, unit.Bookings().Save(ctx, b))
	conv := domainchat.NewForBooking("chat-bk-1", "msg-1", b, time.Now())
	require.NoError(t, unit.Conversations().Create(ctx, conv))

	// nothing visible to other units before commit
	other := begin(t, f)
	_, err := other.Bookings().ByID(ctx, "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
	require.NoError(t, other.Rollback(ctx))

	require.NoError(t, unit.Commit(ctx))

	reader := begin(t, f)
	stored, err := reader.Bookings().ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	storedConv, err := reader.Conversations().ByBooking(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainchat.ConversationID("chat-bk-1"), storedConv.ID)
}

func TestRollbackDiscardsStagedWrites(t *testing.T) {
	ctx := context.Background()
	f := newFactory()

	unit := begin(t, f)
	require.NoError(t, unit.Bookings().Save(ctx, newBooking(t, "bk-1")))
	require.NoError(t, unit.Rollback(ctx))

	reader := begin(t, f)
	_, err := reader.Bookings().ByID(ctx, "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestConversationConflictAbortsWholeCommit(t *testing.T) {
	ctx := context.Background()
	f := newFactory()

	first := begin(t, f)
	b1 := newBooking(t, "bk-1")
	require.NoError(t, first.Bookings().Save(ctx, b1))
	require.NoError(t, first.Conversations().Create(ctx, domainchat.NewForBooking("chat-a", "msg-1", b1, time.Now())))

	// second unit races the same conversation slot with its own booking
	second := begin(t, f)
	b1Again := newBooking(t, "bk-1")
	b2 := newBooking(t, "bk-2")
	require.NoError(t, second.Bookings().Save(ctx, b2))
	require.NoError(t, second.Conversations().Create(ctx, domainchat.NewForBooking("chat-b", "msg-2", b1Again, time.Now())))

	require.NoError(t, first.Commit(ctx))
	err := second.Commit(ctx)
	assert.ErrorIs(t, err, domainchat.ErrAlreadyExists)

	// the losing unit's booking never landed
	reader := begin(t, f)
	_, err = reader.Bookings().ByID(ctx, "bk-2")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestConcurrentTransitionOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFactory()

	seed := begin(t, f)
	require.NoError(t, seed.Bookings().Save(ctx, newBooking(t, "bk-1")))
	require.NoError(t, seed.Commit(ctx))

	unitA := begin(t, f)
	unitB := begin(t, f)

	loadedA, err := unitA.Bookings().ByID(ctx, "bk-1")
	require.NoError(t, err)
	loadedB, err := unitB.Bookings().ByID(ctx, "bk-1")
	require.NoError(t, err)

	require.NoError(t, loadedA.Accept(time.Now()))
	loadedA.ClearEvents()
	require.NoError(t, unitA.Bookings().Save(ctx, loadedA))

	require.NoError(t, loadedB.Reject(time.Now()))
	loadedB.ClearEvents()
	require.NoError(t, unitB.Bookings().Save(ctx, loadedB))

	require.NoError(t, unitA.Commit(ctx))
	assert.ErrorIs(t, unitB.Commit(ctx), uow.ErrConcurrentUpdate)

	reader := begin(t, f)
	stored, err := reader.Bookings().ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
}

func TestSaveRejectsStaleVersionImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFactory()

	seed := begin(t, f)
	stale := newBooking(t, "bk-1")
	require.NoError(t, seed.Bookings().Save(ctx, stale))
	require.NoError(t, seed.Commit(ctx))

	// bump the stored version via a clean transition
	writer := begin(t, f)
	current, err := writer.Bookings().ByID(ctx, "bk-1")
	require.NoError(t, err)
	require.NoError(t, current.Accept(time.Now()))
	current.ClearEvents()
	require.NoError(t, writer.Bookings().Save(ctx, current))
	require.NoError(t, writer.Commit(ctx))

	// a unit holding the pre-transition aggregate loses at Save time
	late := begin(t, f)
	err = late.Bookings().Save(ctx, stale)
	assert.ErrorIs(t, err, uow.ErrConcurrentUpdate)
}

func TestListByParticipant(t *testing.T) {
	ctx := context.Background()
	f := newFactory()

	unit := begin(t, f)
	first := newBooking(t, "bk-1")
	second := newBooking(t, "bk-2")
	require.NoError(t, second.Accept(time.Now()))
	second.ClearEvents()
	require.NoError(t, unit.Bookings().Save(ctx, first))
	require.NoError(t, unit.Bookings().Save(ctx, second))
	require.NoError(t, unit.Commit(ctx))

	reader := begin(t, f)
	all, err := reader.Bookings().ListByPlayer(ctx, "player-1", domainbooking.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	confirmed, err := reader.Bookings().ListByPNJ(ctx, "pnj-1", domainbooking.ListFilter{
		Statuses: []domainbooking.Status{domainbooking.StatusConfirmed},
	})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, domainbooking.BookingID("bk-2"), confirmed[0].ID)

	none, err := reader.Bookings().ListByPlayer(ctx, "somebody-else", domainbooking.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
