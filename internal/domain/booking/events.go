package booking

import (
	"time"

	"pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID BookingID
	PlayerID  string
	PNJID     provider.ProviderID
	Date      time.Time
	Start     string
	Duration  int
	Total     money.Money
	At        time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID
	PNJID     provider.ProviderID
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	Reason    CancelReason
	By        Actor
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type CheckInRecorded struct {
	BookingID BookingID
	By        Actor
	At        time.Time
}

func (e CheckInRecorded) EventName() string     { return "booking.checked_in" }
func (e CheckInRecorded) AggregateID() string   { return string(e.BookingID) }
func (e CheckInRecorded) OccurredAt() time.Time { return e.At }

type CheckOutRecorded struct {
	BookingID BookingID
	By        Actor
	At        time.Time
}

func (e CheckOutRecorded) EventName() string     { return "booking.checked_out" }
func (e CheckOutRecorded) AggregateID() string   { return string(e.BookingID) }
func (e CheckOutRecorded) OccurredAt() time.Time { return e.At }
