package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smacross_orders_submitted_total",
			Help: "Total number of orders submitted (by context).",
		},
		[]string{"ctx"},
	)

	OrdersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smacross_orders_rejected_total",
			Help: "Orders the executor refused (by context).",
		},
		[]string{"ctx"},
	)

	Signals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smacross_signals_total",
			Help: "Crossover evaluations by resulting action.",
		},
		[]string{"action"},
	)

	ObservationsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "smacross_observations_rejected_total",
			Help: "Bars dropped because they were out of order or not finite.",
		},
	)

	WarmupRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smacross_warmup_remaining",
			Help: "Observations left before signals are emitted.",
		},
	)

	MovingAverage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smacross_moving_average",
			Help: "Latest value of the fast and slow moving averages.",
		},
		[]string{"window"},
	)

	CashGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smacross_cash",
			Help: "Current cash balance of the executor.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		OrdersSubmitted,
		OrdersRejected,
		Signals,
		ObservationsRejected,
		WarmupRemaining,
		MovingAverage,
		CashGauge,
	)
}
