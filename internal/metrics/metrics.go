package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds the ledger collectors. A nil *Metrics records nothing.
type Metrics struct {
	Operations         *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	TxRetries          *prometheus.CounterVec
	GiftCardRedeemed   prometheus.Counter
	EarningsGross      prometheus.Counter
	EarningsCommission prometheus.Counter
	NotificationErrors *prometheus.CounterVec
	SaleEvents         *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Ledger operations by outcome code",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Ledger operation latency including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		TxRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_tx_retries_total",
				Help: "Transactions retried after a conflict or transient fault",
			},
			[]string{"operation"},
		),
		GiftCardRedeemed: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_gift_card_redeemed_amount_total",
			Help: "Sum of gift card amounts redeemed",
		}),
		EarningsGross: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_earnings_gross_amount_total",
			Help: "Sum of gross sale amounts booked to coach ledgers",
		}),
		EarningsCommission: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_earnings_commission_amount_total",
			Help: "Sum of platform commission retained",
		}),
		NotificationErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_notification_failures_total",
				Help: "Notifications that could not be published",
			},
			[]string{"kind"},
		),
		SaleEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_sale_events_total",
				Help: "Sale events consumed by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) ObserveOperation(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) Retry(operation string) {
	if m == nil {
		return
	}
	m.TxRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) Redeemed(amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.GiftCardRedeemed.Add(amount.InexactFloat64())
}

func (m *Metrics) Earned(gross, commission decimal.Decimal) {
	if m == nil {
		return
	}
	m.EarningsGross.Add(gross.InexactFloat64())
	m.EarningsCommission.Add(commission.InexactFloat64())
}

func (m *Metrics) NotificationFailed(kind string) {
	if m == nil {
		return
	}
	m.NotificationErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) SaleEvent(outcome string) {
	if m == nil {
		return
	}
	m.SaleEvents.WithLabelValues(outcome).Inc()
}
