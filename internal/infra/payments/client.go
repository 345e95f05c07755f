package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"pnjpremium/internal/app/policies"
	"pnjpremium/internal/domain/shared/money"
)

// Client talks to the payments backend over HTTP. The processor keeps the
// card data; this service only ever sees intent ids and client secrets.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Logger  *slog.Logger
}

type intentRequest struct {
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	PayerRef   string `json:"payer_ref"`
	PayeeRef   string `json:"payee_ref,omitempty"`
	BookingRef string `json:"booking_ref"`
}

type intentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
}

type connectRequest struct {
	Email   string `json:"email"`
	UserRef string `json:"user_ref"`
	Country string `json:"country"`
}

type connectResponse struct {
	AccountID     string `json:"account_id"`
	OnboardingURL string `json:"onboarding_url"`
}

type refundRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          *int64 `json:"amount,omitempty"`
	Currency        string `json:"currency,omitempty"`
}

func (c *Client) CreatePaymentIntent(ctx context.Context, params policies.PaymentIntentParams) (policies.PaymentIntent, error) {
	var zero policies.PaymentIntent
	req := intentRequest{
		Amount:     params.Amount.Amount,
		Currency:   params.Amount.Currency,
		PayerRef:   params.PayerRef,
		PayeeRef:   params.PayeeRef,
		BookingRef: params.BookingRef,
	}
	var resp intentResponse
	if err := c.post(ctx, "/v1/payment-intents", req, &resp); err != nil {
		c.logError("payment intent creation failed", params.BookingRef, err)
		return zero, err
	}
	return policies.PaymentIntent{
		PaymentIntentID: resp.PaymentIntentID,
		ClientSecret:    resp.ClientSecret,
	}, nil
}

func (c *Client) CreateConnectAccount(ctx context.Context, params policies.ConnectAccountParams) (policies.ConnectAccount, error) {
	var zero policies.ConnectAccount
	req := connectRequest{Email: params.Email, UserRef: params.UserRef, Country: params.Country}
	var resp connectResponse
	if err := c.post(ctx, "/v1/connect-accounts", req, &resp); err != nil {
		c.logError("connect account creation failed", params.UserRef, err)
		return zero, err
	}
	return policies.ConnectAccount{AccountID: resp.AccountID, OnboardingURL: resp.OnboardingURL}, nil
}

func (c *Client) Refund(ctx context.Context, paymentIntentID string, amount *money.Money) error {
	req := refundRequest{PaymentIntentID: paymentIntentID}
	if amount != nil {
		req.Amount = &amount.Amount
		req.Currency = amount.Currency
	}
	if err := c.post(ctx, "/v1/refunds", req, nil); err != nil {
		c.logError("refund failed", paymentIntentID, err)
		return err
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in any, out any) error {
	if c == nil || c.HTTP == nil {
		return errors.New("payments: http client not configured")
	}
	if c.BaseURL == "" {
		return errors.New("payments: base url not configured")
	}
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("payments: backend returned status %d: %s", resp.StatusCode, string(snippet))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) logError(msg, ref string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "ref", ref, "error", err)
}

var _ policies.PaymentsPort = (*Client)(nil)
