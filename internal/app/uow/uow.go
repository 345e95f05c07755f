package uow

import (
	"context"
	"errors"

	domainbooking "pnjpremium/internal/domain/booking"
	domainchat "pnjpremium/internal/domain/chat"
	domainprovider "pnjpremium/internal/domain/provider"
)

var (
	// ErrConcurrentUpdate is returned by adapters when a conditional write
	// loses a race; callers may reload and retry the business operation.
	ErrConcurrentUpdate = errors.New("uow: concurrent update detected")
	// ErrBackendUnavailable wraps persistence failures that are neither
	// business-rule violations nor not-found conditions.
	ErrBackendUnavailable = errors.New("uow: persistence backend failure")
)

// UnitOfWork coordinates repositories inside a transaction boundary. The
// booking and its companion conversation must commit or abort together.
type UnitOfWork interface {
	Providers() domainprovider.Repository
	Bookings() domainbooking.Repository
	Conversations() domainchat.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
