package payloads

import (
	"time"

	"github.com/google/uuid"
)

// SaleRecordedEvent announces a confirmed sale and its commission split.
type SaleRecordedEvent struct {
	SaleID                uuid.UUID  `json:"sale_id"`
	EbookID               uuid.UUID  `json:"ebook_id"`
	VendorID              *uuid.UUID `json:"vendor_id,omitempty"`
	BuyerID               uuid.UUID  `json:"buyer_id"`
	PaymentRef            string     `json:"payment_ref"`
	TotalCents            int64      `json:"total_cents"`
	VendorCents           int64      `json:"vendor_cents"`
	PlatformCents         int64      `json:"platform_cents"`
	CommissionRatePercent int        `json:"commission_rate_percent"`
}

// WithdrawalCompletedEvent is emitted once a transfer settles.
type WithdrawalCompletedEvent struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
	VendorID     uuid.UUID `json:"vendor_id"`
	AmountCents  int64     `json:"amount_cents"`
	TransferRef  string    `json:"transfer_ref"`
	CompletedAt  time.Time `json:"completed_at"`
}

// WithdrawalFailedEvent is emitted when a transfer fails and the held amount
// has been returned to the vendor balance.
type WithdrawalFailedEvent struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
	VendorID     uuid.UUID `json:"vendor_id"`
	AmountCents  int64     `json:"amount_cents"`
	Reason       string    `json:"reason,omitempty"`
}

// VendorApprovedEvent signals a vendor may start selling.
type VendorApprovedEvent struct {
	VendorID   uuid.UUID `json:"vendor_id"`
	ApprovedBy string    `json:"approved_by,omitempty"`
	ApprovedAt time.Time `json:"approved_at"`
}

// VendorRejectedEvent signals a vendor application was declined.
type VendorRejectedEvent struct {
	VendorID   uuid.UUID `json:"vendor_id"`
	RejectedBy string    `json:"rejected_by,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}
