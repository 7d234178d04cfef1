package ebooks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
)

// ListFilter narrows the catalog listing.
type ListFilter struct {
	VendorID *uuid.UUID
	Category string
	Limit    int
	Offset   int
}

// Repository manages catalog persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ebook *models.Ebook) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ebook, error)
	List(ctx context.Context, filter ListFilter) ([]models.Ebook, error)
	Delete(ctx context.Context, id uuid.UUID) error
	HasSales(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, ebook *models.Ebook) error {
	return r.db.WithContext(ctx).Create(ebook).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ebook, error) {
	var ebook models.Ebook
	if err := r.db.WithContext(ctx).First(&ebook, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ebook, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Ebook, error) {
	query := r.db.WithContext(ctx).Model(&models.Ebook{})
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.Category != "" {
		query = query.Where("? = ANY(categories)", filter.Category)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []models.Ebook
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Ebook{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) HasSales(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("ebook_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
