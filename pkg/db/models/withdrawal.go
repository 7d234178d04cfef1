package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkshelf/inkshelf-backend/pkg/enums"
)

// Withdrawal records a vendor payout request. It is created pending inside the
// same transaction that debits the vendor balance (the reservation) and moves
// exactly once to completed or failed; failed withdrawals have the debit
// compensated back onto the balance.
type Withdrawal struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	VendorID      uuid.UUID              `gorm:"column:vendor_id;type:uuid;not null;index"`
	AmountCents   int64                  `gorm:"column:amount_cents;not null"`
	Status        enums.WithdrawalStatus `gorm:"column:status;type:withdrawal_status;not null;default:'pending'"`
	TransferRef   *string                `gorm:"column:transfer_ref"`
	FailureReason *string                `gorm:"column:failure_reason"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	CompletedAt   *time.Time             `gorm:"column:completed_at"`
}
