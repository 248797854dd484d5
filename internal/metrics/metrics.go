// Package metrics exposes Prometheus counters and gauges for the flow's
// long-running subcommands (anneal, eco), grounded in style on
// pkg/monitoring/collector/collector.go (teacher) but adapted from that
// package's pull-side Prometheus query client to the expose side: this
// flow registers its own metrics and serves them, rather than scraping
// someone else's.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric the flow's stages update, registered
// against its own prometheus.Registry so a subcommand process exposes
// only its own series.
type Registry struct {
	reg *prometheus.Registry

	StageDuration   *prometheus.HistogramVec
	HPWLHistory     prometheus.Gauge
	AnnealTemp      prometheus.Gauge
	AnnealAccepted  *prometheus.CounterVec
	ECOTiedPins     *prometheus.CounterVec
	PlacedInstances prometheus.Gauge
}

// New builds a Registry with every metric pre-registered.
func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		StageDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "asicflow",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of a flow stage invocation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		HPWLHistory: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "asicflow",
			Name:      "anneal_cost_hpwl",
			Help:      "Current total HPWL cost during SA refinement.",
		}),
		AnnealTemp: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "asicflow",
			Name:      "anneal_temperature",
			Help:      "Current SA temperature.",
		}),
		AnnealAccepted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "asicflow",
			Name:      "anneal_moves_total",
			Help:      "SA moves by move kind and acceptance outcome.",
		}, []string{"kind", "outcome"}),
		ECOTiedPins: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "asicflow",
			Name:      "eco_tied_pins_total",
			Help:      "Gate input pins tied to a leakage-minimal constant, by polarity.",
		}, []string{"polarity"}),
		PlacedInstances: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "asicflow",
			Name:      "placed_instances",
			Help:      "Number of logical instances currently bound to a site.",
		}),
	}
	return r
}

// Serve starts an HTTP server exposing /metrics on addr, returning once
// ctx is canceled or the server fails to start.
func (r *Registry) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	}
}
