package payouts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	"github.com/inkshelf/inkshelf-backend/pkg/enums"
)

// ErrInsufficientBalance reports a debit that would push the balance negative.
// It is returned by the guarded debit so the service can map it to a typed
// error without re-reading the row.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Repository manages persistence for withdrawals and balance debits.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	DebitVendorBalance(ctx context.Context, vendorID uuid.UUID, amountCents int64) error
	CreditVendorBalance(ctx context.Context, vendorID uuid.UUID, amountCents int64) error
	CreateWithdrawal(ctx context.Context, withdrawal *models.Withdrawal) error
	MarkCompleted(ctx context.Context, id uuid.UUID, transferRef string, completedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	FindWithdrawalByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	ListByVendorID(ctx context.Context, vendorID uuid.UUID) ([]models.Withdrawal, error)
	TotalWithdrawnCents(ctx context.Context, vendorID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payouts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// DebitVendorBalance subtracts from the balance only when enough is available.
// The conditional UPDATE holds the vendor row lock until the transaction
// commits, so concurrent requests against one vendor serialize here.
func (r *repository) DebitVendorBalance(ctx context.Context, vendorID uuid.UUID, amountCents int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ? AND balance_cents >= ?", vendorID, amountCents).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (r *repository) CreditVendorBalance(ctx context.Context, vendorID uuid.UUID, amountCents int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", amountCents))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateWithdrawal(ctx context.Context, withdrawal *models.Withdrawal) error {
	return r.db.WithContext(ctx).Create(withdrawal).Error
}

func (r *repository) MarkCompleted(ctx context.Context, id uuid.UUID, transferRef string, completedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, enums.WithdrawalStatusPending).
		Updates(map[string]any{
			"status":       enums.WithdrawalStatusCompleted,
			"transfer_ref": transferRef,
			"completed_at": completedAt,
		}).Error
}

func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, enums.WithdrawalStatusPending).
		Updates(map[string]any{
			"status":         enums.WithdrawalStatusFailed,
			"failure_reason": reason,
		}).Error
}

func (r *repository) FindWithdrawalByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	if err := r.db.WithContext(ctx).First(&withdrawal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *repository) ListByVendorID(ctx context.Context, vendorID uuid.UUID) ([]models.Withdrawal, error) {
	var rows []models.Withdrawal
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) TotalWithdrawnCents(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("vendor_id = ? AND status = ?", vendorID, enums.WithdrawalStatusCompleted).
		Select("SUM(amount_cents)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
