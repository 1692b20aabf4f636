package metrics

import (
	"brightbooks-hq/ledgerport/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// TokenMetrics tracks the OAuth token refresh lifecycle.
//
// Metrics:
//   - brightbooks_ledgerport_token_refreshes_total: Refresh attempts by outcome
type TokenMetrics struct {
	// Refresh attempt counter
	refreshesTotal *prometheus.CounterVec
}

// NewTokenMetrics creates and registers token metrics with the provided registry.
func NewTokenMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TokenMetrics {
	tm := &TokenMetrics{
		refreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "token_refreshes_total",
				Help:      "Total number of OAuth token refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(tm.refreshesTotal)

	return tm
}

// RecordRefresh records one refresh attempt.
//
// Outcomes:
//   - "success": A new token pair was obtained and persisted
//   - "reconnect": The grant is dead and the realm must re-authorize
//   - "error": A transient failure; retrying later may succeed
func (tm *TokenMetrics) RecordRefresh(outcome string) {
	tm.refreshesTotal.WithLabelValues(outcome).Inc()
}
