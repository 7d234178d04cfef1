package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/inkshelf/inkshelf-backend/pkg/config"
	dbpkg "github.com/inkshelf/inkshelf-backend/pkg/db"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	"github.com/inkshelf/inkshelf-backend/pkg/enums"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
	"github.com/inkshelf/inkshelf-backend/pkg/metrics"
	"github.com/inkshelf/inkshelf-backend/pkg/outbox"
)

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service processes vendor withdrawals.
type Service interface {
	RequestWithdrawal(ctx context.Context, vendorID uuid.UUID, amountCents int64) (*models.Withdrawal, error)
	ListVendorWithdrawals(ctx context.Context, vendorID uuid.UUID) ([]models.Withdrawal, error)
}

type service struct {
	tx        TxRunner
	repo      Repository
	transfers TransferClient
	outbox    *outbox.Service
	logg      *logger.Logger
	cfg       config.SettlementConfig
}

// NewService wires the payout processor.
func NewService(tx TxRunner, repo Repository, transfers TransferClient, outboxSvc *outbox.Service, logg *logger.Logger, cfg config.SettlementConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if transfers == nil {
		return nil, fmt.Errorf("transfer client required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if cfg.CompensationMaxRetries <= 0 {
		cfg.CompensationMaxRetries = 5
	}
	if cfg.CompensationBaseBackoff <= 0 {
		cfg.CompensationBaseBackoff = 100 * time.Millisecond
	}
	return &service{tx: tx, repo: repo, transfers: transfers, outbox: outboxSvc, logg: logg, cfg: cfg}, nil
}

// RequestWithdrawal moves the requested amount off the vendor balance, executes
// the transfer, and finalizes the withdrawal. The debit and the pending row are
// written first in one transaction (the reservation), so a crash between the
// debit and the transfer leaves an auditable pending row rather than lost
// money. A failed transfer is compensated by crediting the amount back.
func (s *service) RequestWithdrawal(ctx context.Context, vendorID uuid.UUID, amountCents int64) (*models.Withdrawal, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}

	withdrawal, vendor, err := s.reserve(ctx, vendorID, amountCents)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, transferErr := s.transfers.CreateTransfer(ctx, TransferRequest{
		AmountCents:  withdrawal.AmountCents,
		Destination:  *vendor.PayoutAccountID,
		WithdrawalID: withdrawal.ID.String(),
	})
	if transferErr == nil {
		if err := s.finalizeCompleted(ctx, withdrawal, result.Ref); err != nil {
			return nil, err
		}
		metrics.WithdrawalsProcessed.WithLabelValues(metrics.WithdrawalOutcomeCompleted).Inc()
		metrics.WithdrawalDuration.Observe(time.Since(started).Seconds())
		if s.logg != nil {
			logCtx := s.logg.WithWithdrawalID(s.logg.WithVendorID(ctx, vendorID.String()), withdrawal.ID.String())
			s.logg.Info(logCtx, "withdrawal completed")
		}
		return withdrawal, nil
	}

	compErr := s.compensate(ctx, withdrawal, transferErr.Error())
	metrics.WithdrawalsProcessed.WithLabelValues(metrics.WithdrawalOutcomeFailed).Inc()
	metrics.WithdrawalDuration.Observe(time.Since(started).Seconds())

	if compErr != nil {
		metrics.CompensationFailures.Inc()
		if s.logg != nil {
			logCtx := s.logg.WithWithdrawalID(s.logg.WithVendorID(ctx, vendorID.String()), withdrawal.ID.String())
			s.logg.Error(logCtx, "withdrawal compensation exhausted retries, balance requires manual repair", compErr)
		}
		return withdrawal, pkgerrors.Wrap(pkgerrors.CodeTransferFailed, multierr.Combine(transferErr, compErr), "transfer failed and compensation did not land")
	}

	if s.logg != nil {
		logCtx := s.logg.WithWithdrawalID(s.logg.WithVendorID(ctx, vendorID.String()), withdrawal.ID.String())
		s.logg.Warn(logCtx, "withdrawal failed, amount returned to balance")
	}
	return withdrawal, pkgerrors.Wrap(pkgerrors.CodeTransferFailed, transferErr, "payout transfer failed").
		WithDetails(map[string]string{"withdrawal_id": withdrawal.ID.String()})
}

// reserve validates the request and, in one transaction, debits the balance and
// creates the pending withdrawal.
func (s *service) reserve(ctx context.Context, vendorID uuid.UUID, amountCents int64) (*models.Withdrawal, *models.Vendor, error) {
	var (
		withdrawal *models.Withdrawal
		vendor     *models.Vendor
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindVendorByID(ctx, vendorID)
		if err != nil {
			if dbpkg.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading vendor")
		}
		vendor = found

		if vendor.Status != enums.VendorStatusApproved {
			return pkgerrors.New(pkgerrors.CodeNotApproved, "vendor is not approved for payouts")
		}
		if vendor.PayoutAccountID == nil || *vendor.PayoutAccountID == "" {
			return pkgerrors.New(pkgerrors.CodeNoPayoutDestination, "vendor has no payout destination")
		}
		if amountCents <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "withdrawal amount must be positive")
		}

		if err := repo.DebitVendorBalance(ctx, vendorID, amountCents); err != nil {
			if errors.Is(err, ErrInsufficientBalance) {
				return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "withdrawal amount exceeds available balance")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "debiting balance")
		}

		withdrawal = &models.Withdrawal{
			ID:          uuid.New(),
			VendorID:    vendorID,
			AmountCents: amountCents,
			Status:      enums.WithdrawalStatusPending,
		}
		if err := repo.CreateWithdrawal(ctx, withdrawal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "creating withdrawal")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return withdrawal, vendor, nil
}

// finalizeCompleted records the completed status for a transfer that already
// executed. The write is retried like compensation is, and the exhaustion path
// must never surface a retryable error: the money has moved, and a caller
// retrying the request would pay out a second time.
func (s *service) finalizeCompleted(ctx context.Context, withdrawal *models.Withdrawal, transferRef string) error {
	completedAt := time.Now()
	backoff := retry.WithMaxRetries(uint64(s.cfg.CompensationMaxRetries), retry.NewExponential(s.cfg.CompensationBaseBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.MarkCompleted(ctx, withdrawal.ID, transferRef, completedAt); err != nil {
				return err
			}
			return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventWithdrawalCompleted,
				AggregateType: enums.AggregateWithdrawal,
				AggregateID:   withdrawal.ID,
				Version:       1,
				Data: map[string]any{
					"withdrawal_id": withdrawal.ID,
					"vendor_id":     withdrawal.VendorID,
					"amount_cents":  withdrawal.AmountCents,
					"transfer_ref":  transferRef,
					"completed_at":  completedAt,
				},
			})
		})
		if txErr != nil {
			return retry.RetryableError(txErr)
		}
		return nil
	})
	if err != nil {
		metrics.FinalizationFailures.Inc()
		if s.logg != nil {
			logCtx := s.logg.WithWithdrawalID(s.logg.WithVendorID(ctx, withdrawal.VendorID.String()), withdrawal.ID.String())
			s.logg.Error(logCtx, "transfer executed but withdrawal not finalized, row requires manual repair", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeFinalizeFailed, err, "transfer executed but withdrawal not finalized").
			WithDetails(map[string]string{"withdrawal_id": withdrawal.ID.String(), "transfer_ref": transferRef})
	}
	withdrawal.Status = enums.WithdrawalStatusCompleted
	withdrawal.TransferRef = &transferRef
	withdrawal.CompletedAt = &completedAt
	return nil
}

// compensate returns the reserved amount to the balance and marks the
// withdrawal failed. The credit must not be lost, so it is retried with
// exponential backoff before the manual-intervention alert fires.
func (s *service) compensate(ctx context.Context, withdrawal *models.Withdrawal, reason string) error {
	backoff := retry.WithMaxRetries(uint64(s.cfg.CompensationMaxRetries), retry.NewExponential(s.cfg.CompensationBaseBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.CreditVendorBalance(ctx, withdrawal.VendorID, withdrawal.AmountCents); err != nil {
				return err
			}
			if err := repo.MarkFailed(ctx, withdrawal.ID, reason); err != nil {
				return err
			}
			return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventWithdrawalFailed,
				AggregateType: enums.AggregateWithdrawal,
				AggregateID:   withdrawal.ID,
				Version:       1,
				Data: map[string]any{
					"withdrawal_id": withdrawal.ID,
					"vendor_id":     withdrawal.VendorID,
					"amount_cents":  withdrawal.AmountCents,
					"reason":        reason,
				},
			})
		})
		if txErr != nil {
			return retry.RetryableError(txErr)
		}
		return nil
	})
	if err != nil {
		return err
	}
	withdrawal.Status = enums.WithdrawalStatusFailed
	withdrawal.FailureReason = &reason
	return nil
}

func (s *service) ListVendorWithdrawals(ctx context.Context, vendorID uuid.UUID) ([]models.Withdrawal, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	rows, err := s.repo.ListByVendorID(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "listing withdrawals")
	}
	return rows, nil
}
