package sales

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
)

// Repository manages persistence for sales and the buyer library index.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindEbookByID(ctx context.Context, id uuid.UUID) (*models.Ebook, error)
	FindVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindSaleByPaymentRef(ctx context.Context, paymentRef string) (*models.Sale, error)
	CreateSale(ctx context.Context, sale *models.Sale) error
	CreatePurchase(ctx context.Context, purchase *models.Purchase) error
	CreditVendorBalance(ctx context.Context, vendorID uuid.UUID, amountCents int64) error
	ListByVendorID(ctx context.Context, vendorID uuid.UUID) ([]models.Sale, error)
	ListRecent(ctx context.Context, limit, offset int) ([]models.Sale, error)
	ListPurchasesByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Purchase, error)
	FindEbooksByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ebook, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindEbookByID(ctx context.Context, id uuid.UUID) (*models.Ebook, error) {
	var ebook models.Ebook
	if err := r.db.WithContext(ctx).First(&ebook, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ebook, nil
}

func (r *repository) FindVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) FindSaleByPaymentRef(ctx context.Context, paymentRef string) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).First(&sale, "payment_ref = ?", paymentRef).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

// CreditVendorBalance adds to the vendor balance with a single guarded UPDATE.
// The row lock it takes lasts until the surrounding transaction commits, which
// serializes balance mutations per vendor.
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

func (r *repository) ListByVendorID(ctx context.Context, vendorID uuid.UUID) ([]models.Sale, error) {
	var rows []models.Sale
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListRecent(ctx context.Context, limit, offset int) ([]models.Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var rows []models.Sale
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListPurchasesByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Purchase, error) {
	var rows []models.Purchase
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindEbooksByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ebook, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Ebook
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
