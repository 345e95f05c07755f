package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnjpremium/internal/domain/pricing"
	"pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/money"
	"pnjpremium/internal/domain/shared/timeofday"
)

func testProvider() *provider.Provider {
	return &provider.Provider{
		ID:          "pnj-1",
		DisplayName: "Ayasha",
		HourlyRate:  money.Must(2500, "EUR"),
	}
}

func testParams() CreateParams {
	return CreateParams{
		ID:        "bk-1",
		PlayerID:  "player-1",
		PNJ:       testProvider(),
		Date:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		Start:     timeofday.Minutes(14 * 60),
		Duration:  90,
		Location:  Location{Name: "Arcade Bar", Lat: 48.85, Lon: 2.35},
		FeeRate:   pricing.DefaultFeeRate,
		ChatID:    "chat-1",
		CreatedAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(testParams())
	require.NoError(t, err)
	b.ClearEvents()
	return b
}

func TestNewBooking(t *testing.T) {
	b, err := NewBooking(testParams())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, timeofday.Minutes(15*60+30), b.End)
	assert.Equal(t, int64(2500), b.HourlyRate.Amount)
	assert.Equal(t, int64(3750), b.Price.Total.Amount)
	assert.Equal(t, int64(750), b.Price.PlatformFee.Amount)
	assert.Equal(t, int64(3000), b.Price.PNJEarnings.Amount)
	assert.Equal(t, "chat-1", b.ChatID)
	assert.Nil(t, b.ConfirmedAt)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.requested", events[0].EventName())
	assert.Equal(t, "bk-1", events[0].AggregateID())
}

func TestNewBookingValidation(t *testing.T) {
	params := testParams()
	params.PlayerID = ""
	_, err := NewBooking(params)
	assert.ErrorIs(t, err, ErrPlayerRequired)

	params = testParams()
	params.PNJ = nil
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, provider.ErrNotFound)

	params = testParams()
	params.Duration = 0
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	// 23:00 + 120m crosses midnight
	params = testParams()
	params.Start = timeofday.Minutes(23 * 60)
	params.Duration = 120
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestAccept(t *testing.T) {
	b := newTestBooking(t)
	now := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, b.Accept(now))
	assert.Equal(t, StatusConfirmed, b.Status)
	require.NotNil(t, b.ConfirmedAt)
	assert.Equal(t, now, *b.ConfirmedAt)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.confirmed", events[0].EventName())

	// a second accept must fail
	assert.ErrorIs(t, b.Accept(now), ErrInvalidTransition)
}

func TestReject(t *testing.T) {
	b := newTestBooking(t)

	require.NoError(t, b.Reject(time.Now()))
	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, ReasonRejected, b.CancelReason)
	assert.Equal(t, ActorPNJ, b.CancelledBy)
	assert.NotNil(t, b.CancelledAt)

	assert.ErrorIs(t, b.Reject(time.Now()), ErrInvalidTransition)
	assert.ErrorIs(t, b.Accept(time.Now()), ErrInvalidTransition)
}

func TestCancelFromPendingAndConfirmed(t *testing.T) {
	pending := newTestBooking(t)
	require.NoError(t, pending.Cancel(ReasonPlayerCancel, ActorPlayer, time.Now()))
	assert.Equal(t, StatusCancelled, pending.Status)

	confirmed := newTestBooking(t)
	require.NoError(t, confirmed.Accept(time.Now()))
	require.NoError(t, confirmed.Cancel(ReasonEmergency, ActorPNJ, time.Now()))
	assert.Equal(t, StatusCancelled, confirmed.Status)
	assert.Equal(t, ReasonEmergency, confirmed.CancelReason)
}

func TestCancelValidatesReasonAndActor(t *testing.T) {
	b := newTestBooking(t)
	assert.ErrorIs(t, b.Cancel("because", ActorPlayer, time.Now()), ErrInvalidReason)
	assert.ErrorIs(t, b.Cancel(ReasonPlayerCancel, "stranger", time.Now()), ErrInvalidActor)
	assert.Equal(t, StatusPending, b.Status)
}

func TestCancelRejectedOnceEngagementStarted(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Accept(time.Now()))
	require.NoError(t, b.PerformCheckIn(ActorPlayer, GeoPoint{Lat: 48.85, Lon: 2.35}, time.Now()))

	assert.ErrorIs(t, b.Cancel(ReasonNoShow, ActorPNJ, time.Now()), ErrInvalidTransition)

	require.NoError(t, b.PerformCheckOut(ActorPNJ, time.Now()))
	assert.ErrorIs(t, b.Cancel(ReasonPlayerCancel, ActorPlayer, time.Now()), ErrInvalidTransition)
}

func TestCheckInCheckOutLifecycle(t *testing.T) {
	b := newTestBooking(t)

	// check-in requires a confirmed booking
	assert.ErrorIs(t, b.PerformCheckIn(ActorPlayer, GeoPoint{}, time.Now()), ErrInvalidTransition)

	require.NoError(t, b.Accept(time.Now()))
	b.ClearEvents()

	assert.ErrorIs(t, b.PerformCheckOut(ActorPlayer, time.Now()), ErrInvalidTransition)
	assert.ErrorIs(t, b.PerformCheckIn(ActorSystem, GeoPoint{}, time.Now()), ErrInvalidActor)

	now := time.Date(2026, 9, 7, 14, 2, 0, 0, time.UTC)
	require.NoError(t, b.PerformCheckIn(ActorPlayer, GeoPoint{Lat: 48.85, Lon: 2.35}, now))
	assert.Equal(t, StatusOngoing, b.Status)
	require.NotNil(t, b.CheckIn)
	assert.Equal(t, ActorPlayer, b.CheckIn.By)
	assert.Equal(t, 48.85, b.CheckIn.Coordinates.Lat)

	later := now.Add(90 * time.Minute)
	require.NoError(t, b.PerformCheckOut(ActorPNJ, later))
	assert.Equal(t, StatusCompleted, b.Status)
	require.NotNil(t, b.CompletedAt)
	assert.Equal(t, later, *b.CompletedAt)
	assert.True(t, b.Terminal())

	events := b.PendingEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "booking.checked_in", events[0].EventName())
	assert.Equal(t, "booking.checked_out", events[1].EventName())
}
