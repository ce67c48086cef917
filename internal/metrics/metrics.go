package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Inbound events
	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoplist_events_handled_total",
			Help: "Inbound chat events handled",
		},
		[]string{"kind"}, // "text" or "callback"
	)

	EventPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shoplist_event_panics_total",
			Help: "Events whose handler panicked and was recovered",
		},
	)

	// List state
	ItemsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shoplist_items_created_total",
			Help: "Items added to the list",
		},
	)

	Rejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoplist_rejections_total",
			Help: "Actions rejected for authorization, duplicates or unknown items",
		},
		[]string{"reason"},
	)

	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shoplist_persist_failures_total",
			Help: "Mutations rolled back because the snapshot could not be saved",
		},
	)

	// Transport
	TransportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoplist_transport_failures_total",
			Help: "Chat transport calls that failed and were swallowed",
		},
		[]string{"op", "class"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shoplist_render_duration_seconds",
			Help:    "Time spent re-rendering the chat view",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"op"}, // "item", "full_list", "summary"
	)
)

// Handler serves /metrics for scraping and /healthz for liveness probes.
func Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// Serve exposes Handler on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
