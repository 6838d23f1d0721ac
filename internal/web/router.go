package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/makt28/alertrelay/internal/notify"
)

// Options wires the router to its collaborators.
type Options struct {
	Platform        notify.Platform
	PlatformTimeout time.Duration
	MaxBodyBytes    int64
	// Metrics defaults to a fresh registry when nil.
	Metrics *Metrics
}

// NewRouter sets up all routes and returns the http.Handler.
func NewRouter(opts Options) http.Handler {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 10 << 20
	}

	relay := notify.NewRelay(opts.Platform, opts.PlatformTimeout)
	handlers := NewHandlers(relay, metrics, maxBody)
	health := NewHealthHandler(opts.Platform)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(recoverer)
	r.Use(cors.AllowAll().Handler)
	r.Use(metrics.Middleware)

	r.NotFound(JSONNotFound)
	r.MethodNotAllowed(JSONMethodNotAllowed)

	r.Get("/health", health.Health)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", health.Info)
		r.Post("/alerts", handlers.SendAlert)
		r.Post("/test", handlers.SendTest)
	})

	return r
}
