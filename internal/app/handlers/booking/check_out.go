package booking

import (
	"context"
	"log/slog"
	"time"

	"pnjpremium/internal/app/commands"
	"pnjpremium/internal/app/outbox"
	domainbooking "pnjpremium/internal/domain/booking"
)

const checkOutKey = "booking.check_out"

type CheckOutCommand struct {
	BookingID string
	By        domainbooking.Actor
}

func (c CheckOutCommand) Key() string { return checkOutKey }

// CheckOutHandler closes an ongoing engagement and completes the booking.
type CheckOutHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CheckOutHandler) Handle(ctx context.Context, cmd CheckOutCommand) (*TransitionResult, error) {
	unit, err := requireUnit(ctx)
	if err != nil {
		return nil, err
	}
	bk, err := applyTransition(ctx, unit.Bookings(), domainbooking.BookingID(cmd.BookingID), func(b *domainbooking.Booking) error {
		return b.PerformCheckOut(cmd.By, time.Now())
	})
	if err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking checked out", "booking_id", bk.ID, "by", cmd.By)
	}
	return &TransitionResult{BookingID: string(bk.ID), Status: bk.Status}, nil
}

var _ commands.Handler[CheckOutCommand, *TransitionResult] = (*CheckOutHandler)(nil)
