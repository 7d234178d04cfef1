package vendors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkshelf/inkshelf-backend/internal/commission"
	"github.com/inkshelf/inkshelf-backend/internal/payouts"
	"github.com/inkshelf/inkshelf-backend/pkg/config"
	dbpkg "github.com/inkshelf/inkshelf-backend/pkg/db"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	"github.com/inkshelf/inkshelf-backend/pkg/enums"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
	"github.com/inkshelf/inkshelf-backend/pkg/outbox"
)

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SignupInput is a vendor application.
type SignupInput struct {
	Name         string
	BusinessName string
	Email        string
}

// OnboardingLink is the provisioned payout destination plus the hosted
// onboarding URL the vendor completes out of band.
type OnboardingLink struct {
	AccountID string
	URL       string
}

// BalanceSummary is a vendor's money position.
type BalanceSummary struct {
	BalanceCents        int64
	TotalWithdrawnCents int64
	Withdrawals         []models.Withdrawal
}

// VendorWithStats decorates a vendor row with admin listing counters.
type VendorWithStats struct {
	Vendor models.Vendor
	Stats  VendorStats
}

// Service manages the vendor lifecycle.
type Service interface {
	Signup(ctx context.Context, input SignupInput) (*models.Vendor, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	Approve(ctx context.Context, id, approvedBy uuid.UUID) (*models.Vendor, error)
	Reject(ctx context.Context, id, rejectedBy uuid.UUID, reason string) (*models.Vendor, error)
	Onboard(ctx context.Context, id uuid.UUID) (*OnboardingLink, error)
	BalanceSummary(ctx context.Context, id uuid.UUID) (*BalanceSummary, error)
	ListWithStats(ctx context.Context, status *enums.VendorStatus, limit, offset int) ([]VendorWithStats, error)
}

type service struct {
	tx         TxRunner
	repo       Repository
	payoutRepo payouts.Repository
	onboarding OnboardingClient
	outbox     *outbox.Service
	logg       *logger.Logger
	stripeCfg  config.StripeConfig
}

// NewService wires the vendor lifecycle service.
func NewService(tx TxRunner, repo Repository, payoutRepo payouts.Repository, onboarding OnboardingClient, outboxSvc *outbox.Service, logg *logger.Logger, stripeCfg config.StripeConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if payoutRepo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if onboarding == nil {
		return nil, fmt.Errorf("onboarding client required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{
		tx:         tx,
		repo:       repo,
		payoutRepo: payoutRepo,
		onboarding: onboarding,
		outbox:     outboxSvc,
		logg:       logg,
		stripeCfg:  stripeCfg,
	}, nil
}

// Signup registers a pending vendor at the standard commission rate.
func (s *service) Signup(ctx context.Context, input SignupInput) (*models.Vendor, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.BusinessName = strings.TrimSpace(input.BusinessName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.BusinessName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name required")
	}
	if input.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	vendor := &models.Vendor{
		ID:                    uuid.New(),
		Name:                  input.Name,
		BusinessName:          input.BusinessName,
		Email:                 input.Email,
		Status:                enums.VendorStatusPending,
		CommissionRatePercent: commission.DefaultRatePercent,
	}
	if err := s.repo.Create(ctx, vendor); err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "creating vendor")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithVendorID(ctx, vendor.ID.String()), "vendor application received")
	}
	return vendor, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading vendor")
	}
	return vendor, nil
}

// Approve moves a pending application to approved and queues the
// vendor_approved event in the same transaction.
func (s *service) Approve(ctx context.Context, id, approvedBy uuid.UUID) (*models.Vendor, error) {
	return s.decide(ctx, id, approvedBy, enums.VendorStatusApproved, "")
}

// Reject declines a pending application.
func (s *service) Reject(ctx context.Context, id, rejectedBy uuid.UUID, reason string) (*models.Vendor, error) {
	return s.decide(ctx, id, rejectedBy, enums.VendorStatusRejected, reason)
}

func (s *service) decide(ctx context.Context, id, actor uuid.UUID, status enums.VendorStatus, reason string) (*models.Vendor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if actor == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting admin id required")
	}

	var vendor *models.Vendor
	now := time.Now()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindByID(ctx, id)
		if err != nil {
			if dbpkg.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading vendor")
		}
		// A rejected application may still be approved later. Approval is
		// final: an approved vendor cannot be rejected afterwards.
		if found.Status == status {
			return pkgerrors.New(pkgerrors.CodeValidation, "vendor already "+string(status))
		}
		if found.Status == enums.VendorStatusApproved {
			return pkgerrors.New(pkgerrors.CodeValidation, "approved vendor cannot be rejected")
		}

		if err := repo.UpdateStatus(ctx, id, status, &actor, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "updating vendor status")
		}

		found.Status = status
		if status == enums.VendorStatusApproved {
			found.ApprovedAt = &now
			found.ApprovedBy = &actor
		}
		vendor = found

		eventType := enums.EventVendorApproved
		data := map[string]any{
			"vendor_id":   id,
			"approved_by": actor,
			"approved_at": now,
		}
		if status == enums.VendorStatusRejected {
			eventType = enums.EventVendorRejected
			data = map[string]any{
				"vendor_id":   id,
				"rejected_by": actor,
				"reason":      reason,
			}
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateVendor,
			AggregateID:   id,
			Version:       1,
			Data:          data,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "queueing vendor decision event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vendor, nil
}

// Onboard creates the Stripe Express account on first call and always returns
// a fresh hosted onboarding link.
func (s *service) Onboard(ctx context.Context, id uuid.UUID) (*OnboardingLink, error) {
	vendor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if vendor.Status != enums.VendorStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotApproved, "vendor must be approved before onboarding")
	}

	accountID := ""
	if vendor.PayoutAccountID != nil {
		accountID = *vendor.PayoutAccountID
	}
	if accountID == "" {
		accountID, err = s.onboarding.CreateExpressAccount(ctx, vendor.Email)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payout account")
		}
		if err := s.repo.SetPayoutAccount(ctx, id, accountID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "saving payout account")
		}
	}

	url, err := s.onboarding.CreateAccountLink(ctx, accountID, s.stripeCfg.OnboardingRefreshURL, s.stripeCfg.OnboardingReturnURL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating onboarding link")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithVendorID(ctx, id.String()), "vendor onboarding link issued")
	}
	return &OnboardingLink{AccountID: accountID, URL: url}, nil
}

func (s *service) BalanceSummary(ctx context.Context, id uuid.UUID) (*BalanceSummary, error) {
	vendor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	withdrawals, err := s.payoutRepo.ListByVendorID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "listing withdrawals")
	}
	total, err := s.payoutRepo.TotalWithdrawnCents(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "summing withdrawals")
	}

	return &BalanceSummary{
		BalanceCents:        vendor.BalanceCents,
		TotalWithdrawnCents: total,
		Withdrawals:         withdrawals,
	}, nil
}

func (s *service) ListWithStats(ctx context.Context, status *enums.VendorStatus, limit, offset int) ([]VendorWithStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "listing vendors")
	}

	out := make([]VendorWithStats, 0, len(rows))
	for _, vendor := range rows {
		stats, err := s.repo.Stats(ctx, vendor.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading vendor stats")
		}
		out = append(out, VendorWithStats{Vendor: vendor, Stats: *stats})
	}
	return out, nil
}
