package vendors

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/inkshelf/inkshelf-backend/pkg/stripe"
)

// OnboardingClient provisions payout destinations. The vendor service is
// tested against a fake implementation.
type OnboardingClient interface {
	CreateExpressAccount(ctx context.Context, email string) (string, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
}

type stripeOnboardingClient struct {
	api *stripe.Client
}

// NewStripeOnboardingClient wraps the shared Stripe client for Express onboarding.
func NewStripeOnboardingClient(client *pkgstripe.Client) OnboardingClient {
	if client == nil {
		return nil
	}
	return &stripeOnboardingClient{api: client.API()}
}

func (c *stripeOnboardingClient) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountCreateParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCreateCapabilitiesParams{
			Transfers: &stripe.AccountCreateCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}
	account, err := c.api.V1Accounts.Create(ctx, params)
	if err != nil {
		return "", err
	}
	return account.ID, nil
}

func (c *stripeOnboardingClient) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkCreateParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	link, err := c.api.V1AccountLinks.Create(ctx, params)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}
