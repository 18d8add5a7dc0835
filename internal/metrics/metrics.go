// Package metrics exports world and session counters to Prometheus. All
// methods are safe on a nil *Metrics so callers can run without them.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "turbocraft"

type Metrics struct {
	reg *prometheus.Registry

	chunksGenerated prometheus.Counter
	chunksLoaded    prometheus.Gauge
	chunksEvicted   prometheus.Counter
	blocksStored    prometheus.Gauge
	edits           *prometheus.CounterVec
	saveDuration    *prometheus.HistogramVec
	loadErrors      *prometheus.CounterVec
	slowTicks       prometheus.Counter
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_generated_total",
			Help:      "Chunks generated by the streamer, prefill included.",
		}),
		chunksLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_loaded",
			Help:      "Size of the loaded-chunk set.",
		}),
		chunksEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_evicted_total",
			Help:      "Chunks whose render entities were dropped for distance.",
		}),
		blocksStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blocks_stored",
			Help:      "Blocks in the block store.",
		}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edits_total",
			Help:      "Place and destroy attempts by outcome.",
		}, []string{"action", "result"}),
		saveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Time spent writing a save file.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"file"}),
		loadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Save files that failed to load.",
		}, []string{"file"}),
		slowTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slow_ticks_total",
			Help:      "Ticks that overran the tick interval.",
		}),
	}
	m.reg.MustRegister(
		m.chunksGenerated, m.chunksLoaded, m.chunksEvicted, m.blocksStored,
		m.edits, m.saveDuration, m.loadErrors, m.slowTicks,
	)
	return m
}

// Registry exposes the registry for tests and custom handlers.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) ChunksGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chunksGenerated.Add(float64(n))
}

func (m *Metrics) ChunksEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chunksEvicted.Add(float64(n))
}

// WorldSize records the current loaded-chunk and block counts.
func (m *Metrics) WorldSize(chunks, blocks int) {
	if m == nil {
		return
	}
	m.chunksLoaded.Set(float64(chunks))
	m.blocksStored.Set(float64(blocks))
}

// Edit counts one place or destroy attempt.
func (m *Metrics) Edit(action, result string) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(action, result).Inc()
}

func (m *Metrics) SaveDuration(file string, d time.Duration) {
	if m == nil {
		return
	}
	m.saveDuration.WithLabelValues(file).Observe(d.Seconds())
}

func (m *Metrics) LoadError(file string) {
	if m == nil {
		return
	}
	m.loadErrors.WithLabelValues(file).Inc()
}

func (m *Metrics) SlowTick() {
	if m == nil {
		return
	}
	m.slowTicks.Inc()
}

// Serve starts the /metrics endpoint in its own goroutine. Shut it down with
// the returned server.
func (m *Metrics) Serve(addr string, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "err", err)
		}
	}()
	return srv
}

// Shutdown stops a server returned by Serve.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
