package booking

import (
	"context"

	"pnjpremium/internal/app/dto"
	"pnjpremium/internal/app/handlers/support"
	"pnjpremium/internal/app/queries"
	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
)

const getBookingKey = "booking.get"

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.BookingView, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bk, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.BookingView{}, err
	}
	return dto.MapBooking(bk), nil
}

var _ queries.Handler[GetBookingQuery, dto.BookingView] = (*GetBookingHandler)(nil)
