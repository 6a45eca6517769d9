// Package metrics exposes Prometheus counters for search and playback.
// Counters live on a private registry so tests can create as many
// instances as they need.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "preview_player"

// Metrics bundles the counters updated by the search dispatcher and the
// transport controller.
type Metrics struct {
	SearchRequests   *prometheus.CounterVec
	SearchFailures   *prometheus.CounterVec
	StaleResponses   *prometheus.CounterVec
	TracksLoaded     prometheus.Counter
	PlaybackFailures prometheus.Counter

	registry *prometheus.Registry
}

// New registers all counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		SearchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests dispatched, by purpose.",
		}, []string{"purpose"}),
		SearchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_failures_total",
			Help:      "Search requests that failed or returned a malformed body.",
		}, []string{"purpose"}),
		StaleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Search responses discarded because a newer request was dispatched.",
		}, []string{"purpose"}),
		TracksLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracks_loaded_total",
			Help:      "Preview clips assigned to the playback primitive.",
		}),
		PlaybackFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_failures_total",
			Help:      "Play requests rejected by the playback primitive.",
		}),
		registry: reg,
	}
	reg.MustRegister(m.SearchRequests, m.SearchFailures, m.StaleResponses, m.TracksLoaded, m.PlaybackFailures)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
