package payments

import (
	"context"

	"github.com/google/uuid"

	"pnjpremium/internal/app/policies"
	"pnjpremium/internal/domain/shared/money"
)

// Noop satisfies the payments port without calling anything, for dev and
// tests. Generated ids are random so downstream flows still look realistic.
type Noop struct{}

func (Noop) CreatePaymentIntent(ctx context.Context, params policies.PaymentIntentParams) (policies.PaymentIntent, error) {
	return policies.PaymentIntent{
		PaymentIntentID: "pi_" + uuid.NewString(),
		ClientSecret:    "secret_" + uuid.NewString(),
	}, nil
}

func (Noop) CreateConnectAccount(ctx context.Context, params policies.ConnectAccountParams) (policies.ConnectAccount, error) {
	return policies.ConnectAccount{AccountID: "acct_" + uuid.NewString()}, nil
}

func (Noop) Refund(ctx context.Context, paymentIntentID string, amount *money.Money) error {
	return nil
}

var _ policies.PaymentsPort = Noop{}
