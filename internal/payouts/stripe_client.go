package payouts

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/inkshelf/inkshelf-backend/pkg/stripe"
)

// TransferRequest carries everything a vendor payout transfer needs.
type TransferRequest struct {
	AmountCents  int64
	Currency     string
	Destination  string
	WithdrawalID string
}

// TransferResult is the provider's reference for a settled transfer.
type TransferResult struct {
	Ref string
}

// TransferClient executes payout transfers. The payout service is tested
// against a fake implementation.
type TransferClient interface {
	CreateTransfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}

type stripeTransferClient struct {
	api *stripe.Client
}

// NewStripeTransferClient wraps the shared Stripe client for payout transfers.
func NewStripeTransferClient(client *pkgstripe.Client) TransferClient {
	if client == nil {
		return nil
	}
	return &stripeTransferClient{api: client.API()}
}

func (c *stripeTransferClient) CreateTransfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	params := &stripe.TransferCreateParams{
		Amount:      stripe.Int64(req.AmountCents),
		Currency:    stripe.String(currency),
		Destination: stripe.String(req.Destination),
		Metadata: map[string]string{
			"withdrawal_id": req.WithdrawalID,
		},
	}
	transfer, err := c.api.V1Transfers.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Ref: transfer.ID}, nil
}
