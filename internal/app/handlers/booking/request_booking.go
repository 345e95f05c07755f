package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pnjpremium/internal/app/commands"
	"pnjpremium/internal/app/middleware"
	"pnjpremium/internal/app/outbox"
	"pnjpremium/internal/app/policies"
	"pnjpremium/internal/domain/availability"
	domainbooking "pnjpremium/internal/domain/booking"
	domainchat "pnjpremium/internal/domain/chat"
	domainprovider "pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/timeofday"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	CommandID       string
	PlayerID        string
	PNJID           string
	Date            time.Time
	Start           string // HH:MM provider-local
	DurationMinutes int
	Location        domainbooking.Location
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

type RequestBookingResult struct {
	BookingID string `json:"booking_id"`
	ChatID    string `json:"chat_id"`
}

// RequestBookingHandler creates a pending booking and its companion
// conversation inside the ambient unit of work, so the pair commits or
// aborts together.
type RequestBookingHandler struct {
	FeeRate  float64
	Payments policies.PaymentsPort
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, err := requireUnit(ctx)
	if err != nil {
		return nil, err
	}

	start, err := timeofday.Parse(cmd.Start)
	if err != nil {
		return nil, err
	}
	if cmd.DurationMinutes <= 0 {
		return nil, domainbooking.ErrInvalidDuration
	}

	pnj, err := unit.Providers().ByID(ctx, domainprovider.ProviderID(cmd.PNJID))
	if err != nil {
		return nil, err
	}

	if !availability.IsAvailable(pnj.Availability, cmd.Date, start, cmd.DurationMinutes) {
		return nil, domainbooking.ErrSlotUnavailable
	}

	now := time.Now().UTC()
	chatID := uuid.NewString()
	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		PlayerID:  cmd.PlayerID,
		PNJ:       pnj,
		Date:      cmd.Date,
		Start:     start,
		Duration:  cmd.DurationMinutes,
		Location:  cmd.Location,
		FeeRate:   h.FeeRate,
		ChatID:    chatID,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if h.Payments != nil {
		intent, err := h.Payments.CreatePaymentIntent(ctx, policies.PaymentIntentParams{
			Amount:     bk.Price.Total,
			PayerRef:   bk.PlayerID,
			PayeeRef:   string(bk.PNJID),
			BookingRef: string(bk.ID),
		})
		if err != nil {
			return nil, err
		}
		bk.PaymentIntentID = intent.PaymentIntentID
	}

	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}
	conv := domainchat.NewForBooking(domainchat.ConversationID(chatID), uuid.NewString(), bk, now)
	if err := unit.Conversations().Create(ctx, conv); err != nil {
		return nil, err
	}

	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking requested", "booking_id", bk.ID, "pnj_id", bk.PNJID, "player_id", bk.PlayerID)
	}
	return &RequestBookingResult{BookingID: string(bk.ID), ChatID: chatID}, nil
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
