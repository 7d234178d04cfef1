package vendors

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	"github.com/inkshelf/inkshelf-backend/pkg/enums"
)

// VendorStats carries the admin listing counters for one vendor.
type VendorStats struct {
	EbookCount int64
	SaleCount  int64
}

// Repository manages vendor persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindByEmail(ctx context.Context, email string) (*models.Vendor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VendorStatus, approvedBy *uuid.UUID, at time.Time) error
	SetPayoutAccount(ctx context.Context, id uuid.UUID, accountID string) error
	List(ctx context.Context, status *enums.VendorStatus, limit, offset int) ([]models.Vendor, error)
	Stats(ctx context.Context, vendorID uuid.UUID) (*VendorStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a vendor repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vendor *models.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// UpdateStatus transitions a vendor application. Pending applications can go
// either way and a rejected one can still be approved, but approval is final,
// so the guard never lets an approved vendor move again.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VendorStatus, approvedBy *uuid.UUID, at time.Time) error {
	updates := map[string]any{"status": status}
	allowedFrom := []enums.VendorStatus{enums.VendorStatusPending}
	if status == enums.VendorStatusApproved {
		updates["approved_at"] = at
		updates["approved_by"] = approvedBy
		allowedFrom = append(allowedFrom, enums.VendorStatusRejected)
	}
	result := r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ? AND status IN ?", id, allowedFrom).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SetPayoutAccount(ctx context.Context, id uuid.UUID, accountID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ?", id).
		UpdateColumn("payout_account_id", accountID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, status *enums.VendorStatus, limit, offset int) ([]models.Vendor, error) {
	query := r.db.WithContext(ctx).Model(&models.Vendor{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.Vendor
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Stats(ctx context.Context, vendorID uuid.UUID) (*VendorStats, error) {
	var stats VendorStats
	if err := r.db.WithContext(ctx).
		Model(&models.Ebook{}).
		Where("vendor_id = ?", vendorID).
		Count(&stats.EbookCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("vendor_id = ?", vendorID).
		Count(&stats.SaleCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
