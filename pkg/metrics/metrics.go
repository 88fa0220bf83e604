package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SettlementsComputed counts settlement runs by outcome (ok/blocked/error)
var SettlementsComputed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chipsplit_settlements_computed_total",
		Help: "Total number of settlement computations by outcome",
	},
	[]string{"outcome"},
)

// EarlyCashOuts counts early cash-out calculations by outcome (full/capped/error)
var EarlyCashOuts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chipsplit_early_cashouts_total",
		Help: "Total number of early cash-out calculations by outcome",
	},
	[]string{"outcome"},
)

// SettlementPayments records the payment count distribution per settlement
var SettlementPayments = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "chipsplit_settlement_payments",
		Help:    "Number of payments emitted per optimized settlement",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	},
)

// TransactionsRecorded counts ledger transactions by type (buy_in/cash_out)
var TransactionsRecorded = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chipsplit_transactions_recorded_total",
		Help: "Total number of ledger transactions recorded by type",
	},
	[]string{"type"},
)

func init() {
	prometheus.MustRegister(SettlementsComputed, EarlyCashOuts, SettlementPayments)
	prometheus.MustRegister(TransactionsRecorded)
}
