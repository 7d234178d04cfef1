package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSale       OutboxAggregateType = "sale"
	AggregateWithdrawal OutboxAggregateType = "withdrawal"
	AggregateVendor     OutboxAggregateType = "vendor"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSale,
	AggregateWithdrawal,
	AggregateVendor,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventSaleRecorded        OutboxEventType = "sale_recorded"
	EventWithdrawalCompleted OutboxEventType = "withdrawal_completed"
	EventWithdrawalFailed    OutboxEventType = "withdrawal_failed"
	EventVendorApproved      OutboxEventType = "vendor_approved"
	EventVendorRejected      OutboxEventType = "vendor_rejected"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSaleRecorded,
	EventWithdrawalCompleted,
	EventWithdrawalFailed,
	EventVendorApproved,
	EventVendorRejected,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason classifies terminal outbox publish failures.
type OutboxDLQErrorReason string

const (
	DLQReasonMaxAttempts    OutboxDLQErrorReason = "max_attempts_exceeded"
	DLQReasonUnroutable     OutboxDLQErrorReason = "unroutable_event"
	DLQReasonInvalidPayload OutboxDLQErrorReason = "invalid_payload"
)

var validDLQErrorReasons = []OutboxDLQErrorReason{
	DLQReasonMaxAttempts,
	DLQReasonUnroutable,
	DLQReasonInvalidPayload,
}

// IsValid reports whether the value is a known DLQ error reason.
func (r OutboxDLQErrorReason) IsValid() bool {
	for _, candidate := range validDLQErrorReasons {
		if candidate == r {
			return true
		}
	}
	return false
}
