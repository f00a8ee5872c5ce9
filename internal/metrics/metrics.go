// Package metrics holds the prometheus collectors of the menu service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is private to the service so tests and the CLI never collide with
// the global default registry.
var Registry = prometheus.NewRegistry()

var (
	// DishLoads counts dish collection loads by outcome
	// (found, empty_fallback, not_found, corrupt, unavailable).
	DishLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_dish_loads_total",
			Help: "Dish collection loads by outcome",
		},
		[]string{"outcome"},
	)

	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_mutations_total",
			Help: "Successful data layer mutations by kind",
		},
		[]string{"kind"},
	)

	OracleRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_oracle_requests_total",
			Help: "AI oracle calls by operation and result",
		},
		[]string{"op", "result"},
	)

	OracleLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "menu_oracle_request_seconds",
			Help:    "Time spent waiting for the AI oracle",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		},
		[]string{"op"},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_events_published_total",
			Help: "Menu change events handed to a publisher",
		},
		[]string{"backend", "result"},
	)

	Subscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "menu_event_subscribers",
			Help: "Live change-stream subscribers",
		},
	)
)

func init() {
	Registry.MustRegister(
		DishLoads, Mutations, OracleRequests, OracleLatency, EventsPublished, Subscribers,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// Handler exposes Registry in the text exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
