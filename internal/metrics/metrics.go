package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the counters the checkout path cares about. Stock
// adjustment failures are invisible to shoppers, so the counter is the only
// place they are aggregated.
type Metrics struct {
	Checkouts              *prometheus.CounterVec
	StockAdjustFailures    prometheus.Counter
	OrderEventPublishFails prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"result"}),
		StockAdjustFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "stock_adjustment_failures_total",
			Help:      "Per-item stock decrements that failed after order commit.",
		}),
		OrderEventPublishFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_event_publish_failures_total",
			Help:      "OrderPlaced events that could not be published.",
		}),
	}
	reg.MustRegister(m.Checkouts, m.StockAdjustFailures, m.OrderEventPublishFails)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
