package policies

import (
	"context"

	"pnjpremium/internal/domain/shared/money"
)

// PaymentsPort is the boundary to the payment processor. Implementations run
// behind a trusted backend service; secrets are never minted in-process and
// never handed to an untrusted client.
type PaymentsPort interface {
	CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (PaymentIntent, error)
	CreateConnectAccount(ctx context.Context, params ConnectAccountParams) (ConnectAccount, error)
	// Refund reverses a payment. A nil amount refunds in full.
	Refund(ctx context.Context, paymentIntentID string, amount *money.Money) error
}

type PaymentIntentParams struct {
	Amount     money.Money
	PayerRef   string
	PayeeRef   string // connect account of the PNJ
	BookingRef string
}

type PaymentIntent struct {
	PaymentIntentID string
	ClientSecret    string
}

type ConnectAccountParams struct {
	Email   string
	UserRef string
	Country string
}

type ConnectAccount struct {
	AccountID     string
	OnboardingURL string
}
