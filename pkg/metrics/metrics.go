package metrics

import (
	"errors"
	"sync"

	"creditpool/core"
	"creditpool/pkg/number"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// LedgerMetrics ledger operation counters
type LedgerMetrics struct {
	operations *prometheus.CounterVec
	scores     prometheus.Histogram
	pool       *prometheus.GaugeVec
	transfers  *prometheus.CounterVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger the process wide ledger metrics, registered on first use
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "creditpool_operations_total",
				Help: "Ledger operations by name and result code.",
			}, []string{"op", "code"}),
			scores: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "creditpool_credit_score",
				Help:    "Credit scores written by recomputation.",
				Buckets: prometheus.LinearBuckets(0, 100, 11),
			}),
			pool: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "creditpool_pool_amount",
				Help: "Pool aggregates in whole units after the last mutation.",
			}, []string{"field"}),
			transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "creditpool_transfers_total",
				Help: "Outbound transfer deliveries by result.",
			}, []string{"result"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.operations,
			ledgerRegistry.scores,
			ledgerRegistry.pool,
			ledgerRegistry.transfers,
		)
	})
	return ledgerRegistry
}

// ObserveOperation count op with the error code it ended with, "ok" on success
func (m *LedgerMetrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}

	m.operations.WithLabelValues(op, Code(err)).Inc()
}

// ObserveScore record a recomputed score
func (m *LedgerMetrics) ObserveScore(score int) {
	if m == nil {
		return
	}

	m.scores.Observe(float64(score))
}

// ObservePool publish pool aggregates
func (m *LedgerMetrics) ObservePool(pool *core.Pool) {
	if m == nil || pool == nil {
		return
	}

	for field, v := range map[string]decimal.Decimal{
		"balance":          pool.Balance,
		"total_shares":     pool.TotalShares,
		"treasury_fees":    pool.TreasuryFees,
		"total_borrowed":   pool.TotalBorrowed,
		"total_collateral": pool.TotalCollateral,
	} {
		f, _ := v.Div(number.Unit).Float64()
		m.pool.WithLabelValues(field).Set(f)
	}
}

// ObserveTransfer count a delivery attempt by the status it left the transfer in.
// A transfer still pending after an attempt is counted as a retry.
func (m *LedgerMetrics) ObserveTransfer(status core.TransferStatus) {
	if m == nil {
		return
	}

	result := status.String()
	if status == core.TransferStatusPending {
		result = "retry"
	}

	m.transfers.WithLabelValues(result).Inc()
}

// Code metric label of an error
func Code(err error) string {
	if err == nil {
		return "ok"
	}

	var code core.ErrorCode
	if errors.As(err, &code) {
		return code.String()
	}

	return "internal"
}
