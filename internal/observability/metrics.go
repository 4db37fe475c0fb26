package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the identity flows. Registered on the default
// registry and exposed via /metrics.
var (
	// AccessTokensIssued counts issued access tokens by role.
	AccessTokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_access_tokens_issued_total",
		Help: "Number of access tokens issued",
	}, []string{"role"})

	// RefreshValidations counts refresh token validations by outcome
	// (success, invalid, error).
	RefreshValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_refresh_validations_total",
		Help: "Number of refresh token validations",
	}, []string{"outcome"})

	// TenantScanFailures counts tenant schemas skipped during resolution
	// because of query failures.
	TenantScanFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_tenant_scan_failures_total",
		Help: "Number of tenant schemas skipped during resolution due to errors",
	}, []string{"schema"})

	// SessionIndexLookups counts session index lookups by outcome
	// (hit, miss, stale, error).
	SessionIndexLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_session_index_lookups_total",
		Help: "Number of session index lookups",
	}, []string{"outcome"})

	// ContextSwitches counts company context switches by outcome
	// (success, forbidden, not_found, error).
	ContextSwitches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_context_switches_total",
		Help: "Number of company context switch attempts",
	}, []string{"outcome"})

	// TwoFactorEnrollments counts two-factor enrollment attempts by outcome.
	TwoFactorEnrollments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_two_factor_enrollments_total",
		Help: "Number of two-factor enrollment attempts",
	}, []string{"outcome"})
)
