package monitoring

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the catalog's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal  *prometheus.CounterVec
	CatalogItems   prometheus.Gauge
	PriceUpdates   prometheus.Counter
	FeedPublishing *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		CatalogItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_items",
			Help: "Number of items in the served registry",
		}),
		PriceUpdates: factory.NewCounter(prometheus.CounterOpts{
			Name: "catalog_price_updates_total",
			Help: "Total number of successful price updates",
		}),
		FeedPublishing: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_feed_changes_total",
				Help: "Price changes processed by the feed, by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) RecordRequest(method, route string, status int) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) SetCatalogItems(n int) {
	m.CatalogItems.Set(float64(n))
}

func (m *Metrics) RecordPriceUpdate() {
	m.PriceUpdates.Inc()
}

func (m *Metrics) RecordFeedOutcome(outcome string) {
	m.FeedPublishing.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry, mostly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
