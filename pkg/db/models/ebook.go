package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Ebook is a listed title. VendorID is nil for platform-owned ebooks, in which
// case the whole sale amount accrues to the platform. Price is immutable once
// created; only the content reference (FilePath) is attached later.
type Ebook struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Title       string         `gorm:"column:title;not null"`
	Description *string        `gorm:"column:description"`
	Author      string         `gorm:"column:author;not null"`
	Categories  pq.StringArray `gorm:"column:categories;type:text[]"`
	PriceCents  int64          `gorm:"column:price_cents;not null"`
	VendorID    *uuid.UUID     `gorm:"column:vendor_id;type:uuid;index"`
	CoverURL    *string        `gorm:"column:cover_url"`
	FilePath    *string        `gorm:"column:file_path"`
	CreatedBy   uuid.UUID      `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
