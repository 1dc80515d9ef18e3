package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_status_transitions_total",
		Help: "Order status transitions applied, by target status.",
	},
		[]string{"status"},
	)

	ReturnTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_return_transitions_total",
		Help: "Line item return transitions applied, by target return status.",
	},
		[]string{"status"},
	)

	RefundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_refunds_total",
		Help: "Refunds completed, by execution path.",
	},
		[]string{"path"},
	)

	RefundedMinorUnitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_refunded_minor_units_total",
		Help: "Refunded amount in minor currency units, by execution path.",
	},
		[]string{"path"},
	)

	ActiveSimulations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fulfillment_active_simulations",
		Help: "Tracking simulations currently running.",
	})

	SimulationTicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_simulation_ticks_total",
		Help: "Simulation steps processed, by outcome.",
	},
		[]string{"outcome"},
	)

	NotificationsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_notifications_published_total",
		Help: "Notification events published, by event kind.",
	},
		[]string{"kind"},
	)

	NotificationsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_notifications_dropped_total",
		Help: "Events dropped because a subscriber buffer was full.",
	})

	OutboundRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fulfillment_outbound_request_duration_seconds",
		Help:    "Latency of outbound HTTP calls, by host.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"host"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
