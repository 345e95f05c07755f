package availability

import (
	"context"
	"time"

	"pnjpremium/internal/app/handlers/support"
	"pnjpremium/internal/app/queries"
	"pnjpremium/internal/app/uow"
	domainavailability "pnjpremium/internal/domain/availability"
	domainbooking "pnjpremium/internal/domain/booking"
	domainprovider "pnjpremium/internal/domain/provider"
	"pnjpremium/internal/domain/shared/timeofday"
)

const checkAvailabilityKey = "availability.check"

type CheckAvailabilityQuery struct {
	PNJID           string
	Date            time.Time
	Start           string // HH:MM
	DurationMinutes int
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityResult struct {
	Available bool `json:"available"`
}

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (CheckAvailabilityResult, error) {
	start, err := timeofday.Parse(q.Start)
	if err != nil {
		return CheckAvailabilityResult{}, err
	}
	if q.DurationMinutes <= 0 {
		return CheckAvailabilityResult{}, domainbooking.ErrInvalidDuration
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return CheckAvailabilityResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	pnj, err := unit.Providers().ByID(execCtx, domainprovider.ProviderID(q.PNJID))
	if err != nil {
		return CheckAvailabilityResult{}, err
	}
	ok := domainavailability.IsAvailable(pnj.Availability, q.Date, start, q.DurationMinutes)
	return CheckAvailabilityResult{Available: ok}, nil
}

var _ queries.Handler[CheckAvailabilityQuery, CheckAvailabilityResult] = (*CheckAvailabilityHandler)(nil)
