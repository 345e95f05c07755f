package booking

import (
	"context"
	"log/slog"
	"time"

	"pnjpremium/internal/app/commands"
	"pnjpremium/internal/app/outbox"
	domainbooking "pnjpremium/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string
	Reason    domainbooking.CancelReason
	By        domainbooking.Actor
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

// CancelBookingHandler terminates a pending or confirmed booking with the
// supplied reason and actor.
type CancelBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*TransitionResult, error) {
	unit, err := requireUnit(ctx)
	if err != nil {
		return nil, err
	}
	bk, err := applyTransition(ctx, unit.Bookings(), domainbooking.BookingID(cmd.BookingID), func(b *domainbooking.Booking) error {
		return b.Cancel(cmd.Reason, cmd.By, time.Now())
	})
	if err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking cancelled", "booking_id", bk.ID, "reason", cmd.Reason, "by", cmd.By)
	}
	return &TransitionResult{BookingID: string(bk.ID), Status: bk.Status}, nil
}

var _ commands.Handler[CancelBookingCommand, *TransitionResult] = (*CancelBookingHandler)(nil)
