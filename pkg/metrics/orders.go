package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts lifecycle transitions and sweep outcomes.
type OrderMetrics struct {
	transitions *prometheus.CounterVec
	expired     prometheus.Counter
	sweepErrors prometheus.Counter
}

// NewOrderMetrics registers the order lifecycle metrics on reg. A nil
// registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mystore_order_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mystore_orders_expired_total",
		Help: "Banking orders canceled by the expiry sweep.",
	})
	sweepErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mystore_order_expiry_errors_total",
		Help: "Orders the expiry sweep failed to cancel.",
	})
	reg.MustRegister(transitions, expired, sweepErrors)
	return &OrderMetrics{transitions: transitions, expired: expired, sweepErrors: sweepErrors}
}

func (m *OrderMetrics) ObserveTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *OrderMetrics) IncExpired() {
	if m == nil || m.expired == nil {
		return
	}
	m.expired.Inc()
}

func (m *OrderMetrics) IncSweepError() {
	if m == nil || m.sweepErrors == nil {
		return
	}
	m.sweepErrors.Inc()
}
