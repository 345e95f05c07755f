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
	domainprovider "pnjpremium/internal/domain/provider"
)

const listPNJBookingsKey = "me.bookings.pnj"

type ListPNJBookingsQuery struct {
	PNJID  string
	Filter domainbooking.ListFilter
}

func (q ListPNJBookingsQuery) Key() string { return listPNJBookingsKey }

type ListPNJBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListPNJBookingsHandler) Handle(ctx context.Context, q ListPNJBookingsQuery) (dto.BookingCollection, error) {
	pnjID := strings.TrimSpace(q.PNJID)
	if pnjID == "" {
		return dto.BookingCollection{}, errors.New("me: pnj id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bookings, err := unit.Bookings().ListByPNJ(execCtx, domainprovider.ProviderID(pnjID), q.Filter)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	return dto.MapBookings(bookings), nil
}

var _ queries.Handler[ListPNJBookingsQuery, dto.BookingCollection] = (*ListPNJBookingsHandler)(nil)
