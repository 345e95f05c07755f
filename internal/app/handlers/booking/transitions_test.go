package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnjpremium/internal/app/commands"
	domainbooking "pnjpremium/internal/domain/booking"
)

func requestBooking(t *testing.T, app testApp) *RequestBookingResult {
	t.Helper()
	result, err := commands.Dispatch[RequestBookingCommand, *RequestBookingResult](context.Background(), app.bus, mondaySlot())
	require.NoError(t, err)
	return result
}

func TestAcceptBookingTransition(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	created := requestBooking(t, app)

	result, err := commands.Dispatch[AcceptBookingCommand, *TransitionResult](ctx, app.bus, AcceptBookingCommand{BookingID: created.BookingID})
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, result.Status)

	stored := app.loadBooking(t, created.BookingID)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
	assert.NotNil(t, stored.ConfirmedAt)

	// second accept hits the guard, nothing is written
	_, err = commands.Dispatch[AcceptBookingCommand, *TransitionResult](ctx, app.bus, AcceptBookingCommand{BookingID: created.BookingID})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
}

func TestRejectAfterAcceptFails(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	created := requestBooking(t, app)

	_, err := commands.Dispatch[AcceptBookingCommand, *TransitionResult](ctx, app.bus, AcceptBookingCommand{BookingID: created.BookingID})
	require.NoError(t, err)

	_, err = commands.Dispatch[RejectBookingCommand, *TransitionResult](ctx, app.bus, RejectBookingCommand{BookingID: created.BookingID})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
}

func TestCancelBookingTransition(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	created := requestBooking(t, app)

	result, err := commands.Dispatch[CancelBookingCommand, *TransitionResult](ctx, app.bus, CancelBookingCommand{
		BookingID: created.BookingID,
		Reason:    domainbooking.ReasonPlayerCancel,
		By:        domainbooking.ActorPlayer,
	})
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, result.Status)

	stored := app.loadBooking(t, created.BookingID)
	assert.Equal(t, domainbooking.ReasonPlayerCancel, stored.CancelReason)
	assert.Equal(t, domainbooking.ActorPlayer, stored.CancelledBy)
}

func TestFullLifecycleThroughBus(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	created := requestBooking(t, app)

	_, err := commands.Dispatch[AcceptBookingCommand, *TransitionResult](ctx, app.bus, AcceptBookingCommand{BookingID: created.BookingID})
	require.NoError(t, err)

	checkedIn, err := commands.Dispatch[CheckInCommand, *TransitionResult](ctx, app.bus, CheckInCommand{
		BookingID:   created.BookingID,
		By:          domainbooking.ActorPlayer,
		Coordinates: domainbooking.GeoPoint{Lat: 48.85, Lon: 2.35},
	})
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusOngoing, checkedIn.Status)

	done, err := commands.Dispatch[CheckOutCommand, *TransitionResult](ctx, app.bus, CheckOutCommand{
		BookingID: created.BookingID,
		By:        domainbooking.ActorPNJ,
	})
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCompleted, done.Status)

	stored := app.loadBooking(t, created.BookingID)
	require.NotNil(t, stored.CheckIn)
	require.NotNil(t, stored.CheckOut)
	assert.True(t, stored.Terminal())

	names := make([]string, 0, len(*app.events))
	for _, ev := range *app.events {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{
		"booking.requested",
		"booking.confirmed",
		"booking.checked_in",
		"booking.checked_out",
	}, names)
}

func TestTransitionOnMissingBooking(t *testing.T) {
	app := newTestApp(t)

	_, err := commands.Dispatch[AcceptBookingCommand, *TransitionResult](context.Background(), app.bus, AcceptBookingCommand{BookingID: "bk-missing"})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}
