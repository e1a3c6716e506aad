// Package observability holds the logger and Prometheus metrics shared by the
// store, the dashboard controller and main.
package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a private registry so tests and multiple instances never clash
// on the global default registerer.
type Metrics struct {
	Registry *prometheus.Registry

	storeOps        *prometheus.CounterVec
	entriesMerged   prometheus.Counter
	entriesSkipped  *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	lastRefresh     prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minutemind",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Entry store calls grouped by operation and outcome.",
		}, []string{"op", "outcome"}),
		entriesMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minutemind",
			Subsystem: "store",
			Name:      "entries_merged_total",
			Help:      "Creates that added to an existing entry for the same date.",
		}),
		entriesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minutemind",
			Subsystem: "insights",
			Name:      "entries_skipped_total",
			Help:      "Malformed entries dropped before aggregation, by reason.",
		}, []string{"reason"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "minutemind",
			Subsystem: "dashboard",
			Name:      "refresh_duration_seconds",
			Help:      "Time to fetch entries and rebuild insights and charts.",
			Buckets:   prometheus.DefBuckets,
		}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minutemind",
			Subsystem: "dashboard",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix timestamp of the most recent successful refresh.",
		}),
	}
	m.Registry.MustRegister(m.storeOps, m.entriesMerged, m.entriesSkipped, m.refreshDuration, m.lastRefresh)
	return m
}

// Outcome labels for RecordStoreOp.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

func (m *Metrics) RecordStoreOp(op string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.storeOps.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) RecordMerge() {
	if m == nil {
		return
	}
	m.entriesMerged.Inc()
}

func (m *Metrics) RecordSkipped(reason string) {
	if m == nil {
		return
	}
	m.entriesSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveRefresh(started time.Time) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(time.Since(started).Seconds())
	m.lastRefresh.Set(float64(time.Now().Unix()))
}

// StoreOps exposes the operation counter for tests.
func (m *Metrics) StoreOps() *prometheus.CounterVec { return m.storeOps }

// EntriesMerged exposes the merge counter for tests.
func (m *Metrics) EntriesMerged() prometheus.Counter { return m.entriesMerged }

// EntriesSkipped exposes the skip counter for tests.
func (m *Metrics) EntriesSkipped() *prometheus.CounterVec { return m.entriesSkipped }

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
