package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkshelf",
			Subsystem: "settlement",
			Name:      "sales_recorded_total",
			Help:      "Sales recorded, labeled by whether a vendor share was paid.",
		},
		[]string{"split"},
	)

	SaleAmountCents = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "inkshelf",
			Subsystem: "settlement",
			Name:      "sale_amount_cents",
			Help:      "Gross sale amounts in cents.",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		},
	)

	WithdrawalsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkshelf",
			Subsystem: "settlement",
			Name:      "withdrawals_processed_total",
			Help:      "Withdrawal requests by terminal outcome.",
		},
		[]string{"outcome"},
	)

	WithdrawalDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "inkshelf",
			Subsystem: "settlement",
			Name:      "withdrawal_duration_seconds",
			Help:      "Wall time from withdrawal request to terminal status.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// CompensationFailures counts refunds that could not be applied after the
	// transfer failed. A nonzero value means a vendor balance is short and
	// needs manual repair.
	CompensationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inkshelf",
			Subsystem: "settlement",
			Name:      "compensation_failures_total",
			Help:      "Balance refunds abandoned after exhausting retries.",
		},
	)

	// FinalizationFailures counts withdrawals whose transfer executed but
	// whose completed status could not be stored. The row stays pending and
	// needs manual repair before the vendor sees a correct history.
	FinalizationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inkshelf",
			Subsystem: "settlement",
			Name:      "finalization_failures_total",
			Help:      "Completed transfers abandoned unrecorded after exhausting retries.",
		},
	)

	OutboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkshelf",
			Subsystem: "outbox",
			Name:      "events_published_total",
			Help:      "Outbox events published, by event type.",
		},
		[]string{"event_type"},
	)

	OutboxDeadLettered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkshelf",
			Subsystem: "outbox",
			Name:      "events_dead_lettered_total",
			Help:      "Outbox events moved to the dead letter table, by reason.",
		},
		[]string{"reason"},
	)
)

const (
	WithdrawalOutcomeCompleted = "completed"
	WithdrawalOutcomeFailed    = "failed"

	SplitVendor       = "vendor"
	SplitPlatformOnly = "platform_only"
)
