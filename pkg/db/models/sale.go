package models

import (
	"time"

	"github.com/google/uuid"
)

// Sale is the immutable settlement record for one confirmed purchase.
// VendorCents + PlatformCents == TotalCents always holds; the commission rate is
// captured at sale time so later rate changes never alter historical splits.
// PaymentRef is unique and serves as the idempotency guard for retried
// purchase confirmations.
type Sale struct {
	ID                    uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	EbookID               uuid.UUID  `gorm:"column:ebook_id;type:uuid;not null"`
	BuyerID               uuid.UUID  `gorm:"column:buyer_id;type:uuid;not null;index"`
	VendorID              *uuid.UUID `gorm:"column:vendor_id;type:uuid;index"`
	TotalCents            int64      `gorm:"column:total_cents;not null"`
	VendorCents           int64      `gorm:"column:vendor_cents;not null"`
	PlatformCents         int64      `gorm:"column:platform_cents;not null"`
	CommissionRatePercent int        `gorm:"column:commission_rate_percent;not null"`
	PaymentRef            string     `gorm:"column:payment_ref;not null;unique"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
}
