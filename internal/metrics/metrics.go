// Package metrics wires Prometheus instrumentation for the HTTP surface
// and the execution engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP holds request-level metrics recorded by the router middleware.
type HTTP struct {
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// Engine holds order-lifecycle counters recorded post-commit.
type Engine struct {
	OrdersPlaced    *prometheus.CounterVec
	OrdersFilled    *prometheus.CounterVec
	OrdersCancelled prometheus.Counter
	FeesCents       prometheus.Counter
	SweepRuns       prometheus.Counter
	SweepFills      prometheus.Counter
}

// Registry bundles the process registry with the metric families the
// application records.
type Registry struct {
	reg    *prometheus.Registry
	HTTP   *HTTP
	Engine *Engine
}

// NewRegistry builds a registry with go runtime and process collectors
// plus the application metric families registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := &HTTP{
		RequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(h.RequestCount, h.RequestDuration)

	e := &Engine{
		OrdersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders admitted by side and kind.",
		}, []string{"side", "kind"}),
		OrdersFilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_filled_total",
			Help: "Orders fully filled by liquidity role.",
		}, []string{"role"}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Orders cancelled.",
		}),
		FeesCents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fees_collected_cents_total",
			Help: "Trading fees collected, in cents.",
		}),
		SweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Sweep passes that scanned a book.",
		}),
		SweepFills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sweep_fills_total",
			Help: "Resting orders filled by the sweeper.",
		}),
	}
	reg.MustRegister(
		e.OrdersPlaced, e.OrdersFilled, e.OrdersCancelled,
		e.FeesCents, e.SweepRuns, e.SweepFills,
	)

	return &Registry{reg: reg, HTTP: h, Engine: e}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
