package provider

import (
	"context"
	"errors"
	"time"

	"pnjpremium/internal/domain/availability"
	"pnjpremium/internal/domain/shared/money"
)

var ErrNotFound = errors.New("provider: not found")

type ProviderID string

// Provider is the PNJ side of the marketplace as seen by the booking core:
// the hourly rate to snapshot and the availability profile to consult.
// Profile data (bio, photos, gamification) lives outside this module.
type Provider struct {
	ID           ProviderID
	DisplayName  string
	HourlyRate   money.Money
	Availability availability.Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ProviderID) (*Provider, error)
	Save(ctx context.Context, p *Provider) error
}
