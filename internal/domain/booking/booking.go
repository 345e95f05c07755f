package booking

import (
	"context"
	"errors"
	"time"

	"pnjpremium/internal/domain/pricing"
	"pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/events"
	"pnjpremium/internal/domain/shared/money"
	"pnjpremium/internal/domain/shared/timeofday"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrInvalidDuration   = errors.New("booking: duration must be positive")
	ErrInvalidSchedule   = errors.New("booking: slot must end within the same day")
	ErrPlayerRequired    = errors.New("booking: player id required")
	ErrInvalidActor      = errors.New("booking: actor must be player or pnj")
	ErrInvalidReason     = errors.New("booking: unknown cancellation reason")
	ErrSlotUnavailable   = errors.New("booking: provider not available for requested slot")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Actor string

const (
	ActorPlayer Actor = "player"
	ActorPNJ    Actor = "pnj"
	ActorSystem Actor = "system"
)

type CancelReason string

const (
	ReasonRejected     CancelReason = "rejected"
	ReasonPlayerCancel CancelReason = "player_cancel"
	ReasonPNJCancel    CancelReason = "pnj_cancel"
	ReasonNoPayment    CancelReason = "no_payment"
	ReasonNoShow       CancelReason = "no_show"
	ReasonEmergency    CancelReason = "emergency"
)

// Location is where the engagement takes place.
type Location struct {
	Name    string
	Address string
	Lat     float64
	Lon     float64
	PlaceID string
}

type GeoPoint struct {
	Lat float64
	Lon float64
}

// CheckIn marks the start of the engagement on site.
type CheckIn struct {
	At          time.Time
	By          Actor
	Coordinates GeoPoint
}

// CheckOut closes the engagement.
type CheckOut struct {
	At time.Time
	By Actor
}

// Booking is the central aggregate: a scheduled, priced engagement between a
// player and a PNJ. Money fields are snapshots taken at creation and never
// recomputed. Version guards concurrent writers at the persistence layer.
type Booking struct {
	ID       BookingID
	PlayerID string
	PNJID    provider.ProviderID

	Date     time.Time // calendar date, midnight UTC
	Start    timeofday.Minutes
	Duration int // minutes
	End      timeofday.Minutes

	Location Location

	HourlyRate money.Money
	Price      pricing.Breakdown

	Status          Status
	ChatID          string
	PaymentIntentID string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	CancelReason CancelReason
	CancelledBy  Actor

	CheckIn  *CheckIn
	CheckOut *CheckOut

	Version int64
	events.EventRecorder
}

// ListFilter narrows participant listings. Zero values mean "no constraint".
type ListFilter struct {
	Statuses []Status
	From     time.Time
	To       time.Time
	Limit    int
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	// Save persists the aggregate conditionally on its Version; a stale
	// version must fail rather than overwrite a concurrent transition.
	Save(ctx context.Context, b *Booking) error
	ListByPlayer(ctx context.Context, playerID string, f ListFilter) ([]*Booking, error)
	ListByPNJ(ctx context.Context, pnjID provider.ProviderID, f ListFilter) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	PlayerID  string
	PNJ       *provider.Provider
	Date      time.Time
	Start     timeofday.Minutes
	Duration  int
	Location  Location
	FeeRate   float64
	ChatID    string
	CreatedAt time.Time
}

// NewBooking builds a pending booking: derives the end time, snapshots the
// provider's hourly rate, and computes the price breakdown once. Cross-
// midnight slots are rejected.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.PlayerID == "" {
		return nil, ErrPlayerRequired
	}
	if params.PNJ == nil {
		return nil, provider.ErrNotFound
	}
	if params.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	end := params.Start.Add(params.Duration)
	if !params.Start.Valid() || end > timeofday.DayEnd {
		return nil, ErrInvalidSchedule
	}

	price, err := pricing.Compute(params.PNJ.HourlyRate, params.Duration, params.FeeRate)
	if err != nil {
		return nil, err
	}

	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		PlayerID:   params.PlayerID,
		PNJID:      params.PNJ.ID,
		Date:       params.Date.UTC().Truncate(24 * time.Hour),
		Start:      params.Start,
		Duration:   params.Duration,
		End:        end,
		Location:   params.Location,
		HourlyRate: params.PNJ.HourlyRate,
		Price:      price,
		Status:     StatusPending,
		ChatID:     params.ChatID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingRequested{
		BookingID: b.ID,
		PlayerID:  b.PlayerID,
		PNJID:     b.PNJID,
		Date:      b.Date,
		Start:     b.Start.String(),
		Duration:  b.Duration,
		Total:     b.Price.Total,
		At:        now,
	})
	return b, nil
}

// Accept moves a pending booking to confirmed.
func (b *Booking) Accept(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}
	now = now.UTC()
	b.Status = StatusConfirmed
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	b.Record(BookingConfirmed{BookingID: b.ID, PNJID: b.PNJID, At: now})
	return nil
}

// Reject is the provider declining a pending request. It terminates the
// booking as cancelled with the dedicated reason.
func (b *Booking) Reject(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}
	return b.cancel(ReasonRejected, ActorPNJ, now)
}

// Cancel terminates a pending or confirmed booking. Ongoing and completed
// bookings cannot be cancelled.
func (b *Booking) Cancel(reason CancelReason, by Actor, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidTransition
	}
	switch reason {
	case ReasonPlayerCancel, ReasonPNJCancel, ReasonNoPayment, ReasonNoShow, ReasonEmergency:
	default:
		return ErrInvalidReason
	}
	switch by {
	case ActorPlayer, ActorPNJ, ActorSystem:
	default:
		return ErrInvalidActor
	}
	return b.cancel(reason, by, now)
}

func (b *Booking) cancel(reason CancelReason, by Actor, now time.Time) error {
	now = now.UTC()
	b.Status = StatusCancelled
	b.CancelReason = reason
	b.CancelledBy = by
	b.CancelledAt = &now
	b.UpdatedAt = now
	b.Record(BookingCancelled{BookingID: b.ID, Reason: reason, By: by, At: now})
	return nil
}

// PerformCheckIn records the on-site check-in and starts the engagement.
func (b *Booking) PerformCheckIn(by Actor, coords GeoPoint, now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidTransition
	}
	if by != ActorPlayer && by != ActorPNJ {
		return ErrInvalidActor
	}
	now = now.UTC()
	b.Status = StatusOngoing
	b.CheckIn = &CheckIn{At: now, By: by, Coordinates: coords}
	b.UpdatedAt = now
	b.Record(CheckInRecorded{BookingID: b.ID, By: by, At: now})
	return nil
}

// PerformCheckOut closes an ongoing engagement and completes the booking.
func (b *Booking) PerformCheckOut(by Actor, now time.Time) error {
	if b.Status != StatusOngoing {
		return ErrInvalidTransition
	}
	if by != ActorPlayer && by != ActorPNJ {
		return ErrInvalidActor
	}
	now = now.UTC()
	b.Status = StatusCompleted
	b.CheckOut = &CheckOut{At: now, By: by}
	b.CompletedAt = &now
	b.UpdatedAt = now
	b.Record(CheckOutRecorded{BookingID: b.ID, By: by, At: now})
	return nil
}

// Terminal reports whether no further transitions are possible.
func (b *Booking) Terminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}
