package me

import (
	"context"
	"errors"
	"strings"

	"pnjpremium/internal/app/dto"
	"pnjpremium/internal/app/handlers/support"
	"pnjpremium/internal/app/queries"
	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
)

const listPlayerBookingsKey = "me.bookings.player"

type ListPlayerBookingsQuery struct {
	PlayerID string
	Filter   domainbooking.ListFilter
}

func (q ListPlayerBookingsQuery) Key() string { return listPlayerBookingsKey }

type ListPlayerBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListPlayerBookingsHandler) Handle(ctx context.Context, q ListPlayerBookingsQuery) (dto.BookingCollection, error) {
	playerID := strings.TrimSpace(q.PlayerID)
	if playerID == "" {
		return dto.BookingCollection{}, errors.New("me: player id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bookings, err := unit.Bookings().ListByPlayer(execCtx, playerID, q.Filter)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	return dto.MapBookings(bookings), nil
}

var _ queries.Handler[ListPlayerBookingsQuery, dto.BookingCollection] = (*ListPlayerBookingsHandler)(nil)
