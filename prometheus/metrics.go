package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultPrefix = "storefront"

var (
	// Tenant resolution metrics
	TenantResolutionsCounter *prometheus.CounterVec

	// Directory lookups by source and outcome
	DirectoryLookupsCounter *prometheus.CounterVec

	// Publication guard decisions
	GuardDecisionsCounter *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Tenant lifecycle metrics
	TenantOperationsCounter *prometheus.CounterVec

	// Storefront query metrics
	StorefrontQueriesCounter *prometheus.CounterVec

	// Order metrics
	OrdersPlacedCounter prometheus.Counter

	// Account metrics
	AuthAttemptsCounter *prometheus.CounterVec
)

func init() {
	build(defaultPrefix)
}

func build(prefix string) {
	TenantResolutionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_resolutions_total",
			Help: "Total number of request tenant resolutions by outcome kind",
		},
		[]string{"kind"},
	)

	DirectoryLookupsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_directory_lookups_total",
			Help: "Total number of tenant directory lookups",
		},
		[]string{"source", "result"},
	)

	GuardDecisionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_guard_decisions_total",
			Help: "Total number of publication guard decisions",
		},
		[]string{"decision"},
	)

	DbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	TenantOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"},
	)

	StorefrontQueriesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_storefront_queries_total",
			Help: "Total number of storefront queries by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	OrdersPlacedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_orders_placed_total",
			Help: "Total number of orders placed",
		},
	)

	AuthAttemptsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of register and login attempts by result",
		},
		[]string{"operation", "result"},
	)
}

// InitMetrics rebuilds the collectors with the configured prefix and registers them.
// Call it once at startup, before serving traffic.
func InitMetrics(prefix string, reg prometheus.Registerer) {
	if prefix == "" {
		prefix = defaultPrefix
	}
	build(prefix)
	reg.MustRegister(
		TenantResolutionsCounter,
		DirectoryLookupsCounter,
		GuardDecisionsCounter,
		DbOperationDuration,
		TenantOperationsCounter,
		StorefrontQueriesCounter,
		OrdersPlacedCounter,
		AuthAttemptsCounter,
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordResolution counts a resolver outcome (admin, store, preview)
func RecordResolution(kind string) {
	TenantResolutionsCounter.WithLabelValues(kind).Inc()
}

// RecordDirectoryLookup counts a directory lookup by source (cache, db) and result
func RecordDirectoryLookup(source, result string) {
	DirectoryLookupsCounter.WithLabelValues(source, result).Inc()
}

// RecordGuardDecision counts a guard decision (visible, bypassed, forbidden)
func RecordGuardDecision(decision string) {
	GuardDecisionsCounter.WithLabelValues(decision).Inc()
}

// RecordTenantOperation increments the counter for tenant operations
func RecordTenantOperation(operation string) {
	TenantOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordStorefrontQuery counts a storefront query and its outcome
func RecordStorefrontQuery(operation, outcome string) {
	StorefrontQueriesCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordOrderPlaced increments the orders counter
func RecordOrderPlaced() {
	OrdersPlacedCounter.Inc()
}

// RecordAuthAttempt increments the auth attempt counter
func RecordAuthAttempt(operation, result string) {
	AuthAttemptsCounter.WithLabelValues(operation, result).Inc()
}
