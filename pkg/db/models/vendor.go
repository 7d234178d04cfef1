package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkshelf/inkshelf-backend/pkg/enums"
)

// Vendor represents a marketplace seller with a commission-bearing balance.
// BalanceCents is only mutated by the sale recorder (credit) and the payout
// processor (debit/compensate), always under a row lock on this record.
type Vendor struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name                  string             `gorm:"column:name;not null"`
	BusinessName          string             `gorm:"column:business_name;not null"`
	Email                 string             `gorm:"column:email;not null;unique"`
	Status                enums.VendorStatus `gorm:"column:status;type:vendor_status;not null;default:'pending'"`
	CommissionRatePercent int                `gorm:"column:commission_rate_percent;not null;default:10"`
	PayoutAccountID       *string            `gorm:"column:payout_account_id"`
	BalanceCents          int64              `gorm:"column:balance_cents;not null;default:0"`
	ApprovedAt            *time.Time         `gorm:"column:approved_at"`
	ApprovedBy            *uuid.UUID         `gorm:"column:approved_by;type:uuid"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
