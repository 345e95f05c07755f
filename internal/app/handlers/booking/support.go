package booking

import (
	"context"
	"errors"

	"pnjpremium/internal/app/outbox"
	"pnjpremium/internal/app/uow"
	domainbooking "pnjpremium/internal/domain/booking"
)

// transitionRetries bounds the reload loop when a conditional write loses a
// race. The reload re-checks the status precondition, so a genuinely illegal
// transition surfaces as ErrInvalidTransition rather than a stale overwrite.
const transitionRetries = 3

func applyTransition(
	ctx context.Context,
	repo domainbooking.Repository,
	id domainbooking.BookingID,
	mutate func(*domainbooking.Booking) error,
) (*domainbooking.Booking, error) {
	var lastErr error
	for attempt := 0; attempt < transitionRetries; attempt++ {
		b, err := repo.ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := mutate(b); err != nil {
			return nil, err
		}
		if err := repo.Save(ctx, b); err != nil {
			if errors.Is(err, uow.ErrConcurrentUpdate) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return b, nil
	}
	return nil, lastErr
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, b *domainbooking.Booking) error {
	pending := b.PendingEvents()
	b.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

func requireUnit(ctx context.Context) (uow.UnitOfWork, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	return unit, nil
}
