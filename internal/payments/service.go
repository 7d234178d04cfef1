package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkshelf/inkshelf-backend/internal/commission"
	dbpkg "github.com/inkshelf/inkshelf-backend/pkg/db"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
)

type ebookLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ebook, error)
}

type vendorLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

// CreateIntentInput identifies the ebook a buyer is paying for.
type CreateIntentInput struct {
	EbookID uuid.UUID
	BuyerID uuid.UUID
}

// Intent is the created capture, split included so the storefront can show
// the breakdown without re-deriving it.
type Intent struct {
	Ref           string
	ClientSecret  string
	AmountCents   int64
	VendorCents   int64
	PlatformCents int64
}

// Service creates storefront payment intents. The charge itself completes
// outside this service; a confirmed charge comes back through sale recording
// with the intent ref as the payment ref.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*Intent, error)
}

type service struct {
	ebooks  ebookLoader
	vendors vendorLoader
	intents IntentClient
	logg    *logger.Logger
}

// NewService wires the payments service.
func NewService(ebooks ebookLoader, vendors vendorLoader, intents IntentClient, logg *logger.Logger) (Service, error) {
	if ebooks == nil {
		return nil, fmt.Errorf("ebook loader required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor loader required")
	}
	if intents == nil {
		return nil, fmt.Errorf("intent client required")
	}
	return &service{ebooks: ebooks, vendors: vendors, intents: intents, logg: logg}, nil
}

func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*Intent, error) {
	if input.EbookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ebook id required")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}

	ebook, err := s.ebooks.FindByID(ctx, input.EbookID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ebook not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading ebook")
	}

	split, destination, err := s.resolveSplit(ctx, ebook)
	if err != nil {
		return nil, err
	}

	req := IntentRequest{
		AmountCents: split.TotalCents,
		Metadata: map[string]string{
			"ebook_id": ebook.ID.String(),
			"buyer_id": input.BuyerID.String(),
		},
	}
	if destination != "" {
		req.Destination = destination
		req.ApplicationFeeCents = split.PlatformCents
	}

	result, err := s.intents.CreateIntent(ctx, req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment intent")
	}

	if s.logg != nil {
		fields := map[string]any{
			"intent_ref":   result.Ref,
			"ebook_id":     ebook.ID.String(),
			"amount_cents": split.TotalCents,
		}
		s.logg.Info(s.logg.WithBuyerID(s.logg.WithFields(ctx, fields), input.BuyerID.String()), "payment intent created")
	}

	return &Intent{
		Ref:           result.Ref,
		ClientSecret:  result.ClientSecret,
		AmountCents:   split.TotalCents,
		VendorCents:   split.VendorCents,
		PlatformCents: split.PlatformCents,
	}, nil
}

// resolveSplit computes the commission split for the ebook's owner. Direct
// routing to the vendor's connected account only happens once the vendor has
// finished payout onboarding; until then the platform captures the full
// amount and the ledger credit from sale recording carries the vendor share.
func (s *service) resolveSplit(ctx context.Context, ebook *models.Ebook) (commission.Split, string, error) {
	if ebook.VendorID == nil {
		split, err := commission.PlatformOnly(ebook.PriceCents)
		return split, "", err
	}

	vendor, err := s.vendors.FindByID(ctx, *ebook.VendorID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return commission.Split{}, "", pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return commission.Split{}, "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading vendor")
	}

	split, err := commission.Calculate(ebook.PriceCents, vendor.CommissionRatePercent)
	if err != nil {
		return commission.Split{}, "", err
	}

	destination := ""
	if vendor.PayoutAccountID != nil {
		destination = *vendor.PayoutAccountID
	}
	return split, destination, nil
}
