package booking

import (
	"context"
	"log/slog"
	"time"

	"pnjpremium/internal/app/commands"
	"pnjpremium/internal/app/outbox"
	domainbooking "pnjpremium/internal/domain/booking"
)

const checkInKey = "booking.check_in"

type CheckInCommand struct {
	BookingID   string
	By          domainbooking.Actor
	Coordinates domainbooking.GeoPoint
}

func (c CheckInCommand) Key() string { return checkInKey }

// CheckInHandler records the on-site check-in and moves a confirmed booking
// to ongoing.
type CheckInHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CheckInHandler) Handle(ctx context.Context, cmd CheckInCommand) (*TransitionResult, error) {
	unit, err := requireUnit(ctx)
	if err != nil {
		return nil, err
	}
	bk, err := applyTransition(ctx, unit.Bookings(), domainbooking.BookingID(cmd.BookingID), func(b *domainbooking.Booking) error {
		return b.PerformCheckIn(cmd.By, cmd.Coordinates, time.Now())
	})
	if err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking checked in", "booking_id", bk.ID, "by", cmd.By)
	}
	return &TransitionResult{BookingID: string(bk.ID), Status: bk.Status}, nil
}

var _ commands.Handler[CheckInCommand, *TransitionResult] = (*CheckInHandler)(nil)
