package booking

import (
	"context"
	"log/slog"
	"time"

	"pnjpremium/internal/app/commands"
	"pnjpremium/internal/app/outbox"
	domainbooking "pnjpremium/internal/domain/booking"
)

const rejectBookingKey = "booking.reject"

type RejectBookingCommand struct {
	BookingID string
}

func (c RejectBookingCommand) Key() string { return rejectBookingKey }

// RejectBookingHandler declines a pending request; the booking terminates as
// cancelled with reason "rejected" attributed to the PNJ.
type RejectBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *RejectBookingHandler) Handle(ctx context.Context, cmd RejectBookingCommand) (*TransitionResult, error) {
	unit, err := requireUnit(ctx)
	if err != nil {
		return nil, err
	}
	bk, err := applyTransition(ctx, unit.Bookings(), domainbooking.BookingID(cmd.BookingID), func(b *domainbooking.Booking) error {
		return b.Reject(time.Now())
	})
	if err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking rejected", "booking_id", bk.ID)
	}
	return &TransitionResult{BookingID: string(bk.ID), Status: bk.Status}, nil
}

var _ commands.Handler[RejectBookingCommand, *TransitionResult] = (*RejectBookingHandler)(nil)
