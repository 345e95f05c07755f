package booking

import (
	"context"
	"log/slog"
	"time"

	"pnjpremium/internal/app/commands"
	"pnjpremium/internal/app/outbox"
	domainbooking "pnjpremium/internal/domain/booking"
)

const acceptBookingKey = "booking.accept"

type AcceptBookingCommand struct {
	BookingID string
}

func (c AcceptBookingCommand) Key() string { return acceptBookingKey }

type TransitionResult struct {
	BookingID string               `json:"booking_id"`
	Status    domainbooking.Status `json:"status"`
}

// AcceptBookingHandler confirms a pending booking on behalf of the provider.
type AcceptBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *AcceptBookingHandler) Handle(ctx context.Context, cmd AcceptBookingCommand) (*TransitionResult, error) {
	unit, err := requireUnit(ctx)
	if err != nil {
		return nil, err
	}
	bk, err := applyTransition(ctx, unit.Bookings(), domainbooking.BookingID(cmd.BookingID), func(b *domainbooking.Booking) error {
		return b.Accept(time.Now())
	})
	if err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking accepted", "booking_id", bk.ID)
	}
	return &TransitionResult{BookingID: string(bk.ID), Status: bk.Status}, nil
}

var _ commands.Handler[AcceptBookingCommand, *TransitionResult] = (*AcceptBookingHandler)(nil)
