package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/study-room/internal/transport/http/middleware"
	"github.com/cwrk-planet/study-room/pkg/errs"
	"github.com/cwrk-planet/study-room/pkg/httputil"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Shell   *Shell
	Handler *Handler
	WS      http.HandlerFunc
	Guests  *httpmw.GuestSessions
	Metrics *httpmw.Metrics
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Health is called by /healthz when set.
	Health         func(ctx context.Context) error
	AllowedOrigins []string
}

// NewRouter claims the server endpoints first and hands every remaining GET
// to the page shell, so any path outside them ends at a page route.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RealIP)
	r.Use(httputil.MiddlewareRequestID)
	r.Use(httputil.MiddlewareLogging)
	r.Use(middlewareChi.Recoverer)
	r.Use(middlewareChi.GetHead)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				err = fmt.Errorf("%w: %w", errs.ErrUnavailable, err)
				httputil.L(r.Context()).Error("health check failed", "err", err)
				http.Error(w, "unhealthy", errs.ToHTTP(err))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
		api.Use(middlewareChi.Timeout(30 * time.Second))

		api.Get("/rooms", d.Handler.ListRooms)
		api.Get("/rooms/{id}", d.Handler.GetRoom)

		// paths the API does not serve are pages like any other
		api.NotFound(d.Shell.ServeHTTP)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(d.Guests.Middleware)

		pr.Get("/ws/rooms/{id}", d.WS)

		pr.Group(func(pages chi.Router) {
			pages.Use(middlewareChi.Compress(5, "text/html"))
			pages.Get("/", d.Shell.ServeHTTP)
			pages.Get("/*", d.Shell.ServeHTTP)
		})
	})

	return r
}
