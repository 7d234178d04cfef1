package revenue

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
)

// PlatformTotals is the platform-wide settlement rollup.
type PlatformTotals struct {
	SaleCount     int64 `gorm:"column:sale_count"`
	GrossCents    int64 `gorm:"column:gross_cents"`
	PlatformCents int64 `gorm:"column:platform_cents"`
	VendorCents   int64 `gorm:"column:vendor_cents"`
}

// VendorTotals is one vendor's settlement rollup.
type VendorTotals struct {
	SaleCount   int64 `gorm:"column:sale_count"`
	GrossCents  int64 `gorm:"column:gross_cents"`
	EarnedCents int64 `gorm:"column:earned_cents"`
}

// Repository aggregates over the immutable sales index.
type Repository interface {
	PlatformTotals(ctx context.Context) (*PlatformTotals, error)
	VendorTotals(ctx context.Context, vendorID uuid.UUID) (*VendorTotals, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a revenue repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) PlatformTotals(ctx context.Context) (*PlatformTotals, error) {
	var totals PlatformTotals
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select(
			"COUNT(*) AS sale_count",
			"COALESCE(SUM(total_cents), 0) AS gross_cents",
			"COALESCE(SUM(platform_cents), 0) AS platform_cents",
			"COALESCE(SUM(vendor_cents), 0) AS vendor_cents",
		).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *repository) VendorTotals(ctx context.Context, vendorID uuid.UUID) (*VendorTotals, error) {
	var totals VendorTotals
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("vendor_id = ?", vendorID).
		Select(
			"COUNT(*) AS sale_count",
			"COALESCE(SUM(total_cents), 0) AS gross_cents",
			"COALESCE(SUM(vendor_cents), 0) AS earned_cents",
		).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
