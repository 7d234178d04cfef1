package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/inkshelf/inkshelf-backend/pkg/stripe"
)

// IntentRequest carries the capture parameters for one storefront charge.
// ApplicationFeeCents and Destination are set together when the charge routes
// funds to a vendor's connected account.
type IntentRequest struct {
	AmountCents         int64
	Currency            string
	ApplicationFeeCents int64
	Destination         string
	Metadata            map[string]string
}

// IntentResult is what the storefront needs to finish the capture client-side.
type IntentResult struct {
	Ref          string
	ClientSecret string
}

// IntentClient creates payment intents. The payments service is tested against
// a fake implementation.
type IntentClient interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
}

type stripeIntentClient struct {
	api *stripe.Client
}

// NewStripeIntentClient wraps the shared Stripe client for storefront captures.
func NewStripeIntentClient(client *pkgstripe.Client) IntentClient {
	if client == nil {
		return nil
	}
	return &stripeIntentClient{api: client.API()}
}

func (c *stripeIntentClient) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: req.Metadata,
	}
	if req.Destination != "" {
		params.TransferData = &stripe.PaymentIntentCreateTransferDataParams{
			Destination: stripe.String(req.Destination),
		}
		params.ApplicationFeeAmount = stripe.Int64(req.ApplicationFeeCents)
	}

	intent, err := c.api.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	return &IntentResult{Ref: intent.ID, ClientSecret: intent.ClientSecret}, nil
}
