package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/cidstore"
	"github.com/cideldill/cideldill/internal/httpapi/handlers"
	"github.com/cideldill/cideldill/internal/logger"
	"github.com/cideldill/cideldill/internal/mcpadapter"
	"github.com/cideldill/cideldill/pkg/metrics"
)

// NewRouter builds the control plane's HTTP surface: one group of
// breakpoint/behavior endpoints, one for the call lifecycle, one for the
// pause scheduler, one for the function registry, and one for operator
// diagnostics (com-errors, health).
func NewRouter(manager *breakpoint.Manager, store *cidstore.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	breakpoints := handlers.NewBreakpointsHandler(manager)
	functions := handlers.NewFunctionsHandler(manager)
	calls := handlers.NewCallsHandler(manager, store)
	paused := handlers.NewPausedHandler(manager)
	comErrors := handlers.NewComErrorsHandler(manager)
	health := handlers.NewHealthHandler(store)

	mcpServer := mcpadapter.NewServer(manager, store)
	manager.AddObserver(mcpServer)
	r.Mount("/mcp", mcpServer.Routes())

	r.Get("/health", health.Live)
	r.Get("/health/ready", health.Ready)

	if metrics.IsEnabled() {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/breakpoints", breakpoints.List)
		r.Post("/breakpoints", breakpoints.Add)
		r.Delete("/breakpoints/{name}", breakpoints.Remove)
		r.Post("/breakpoints/{name}/behavior", breakpoints.SetBehavior)
		r.Post("/breakpoints/{name}/after_behavior", breakpoints.SetAfterBehavior)
		r.Post("/breakpoints/{name}/replacement", breakpoints.SetReplacement)
		r.Get("/breakpoints/{name}/history", breakpoints.History)

		r.Get("/behavior", breakpoints.GetDefaultBehavior)
		r.Post("/behavior", breakpoints.SetDefaultBehavior)

		r.Get("/functions", functions.List)
		r.Post("/functions", functions.Register)

		r.Post("/call/start", calls.Start)
		r.Post("/call/complete", calls.Complete)
		r.Post("/call/event", calls.Event)

		r.Get("/paused", paused.List)
		r.Get("/poll/{pause_id}", paused.Poll)
		r.Post("/paused/{pause_id}/continue", paused.Continue)

		r.Post("/report-com-error", comErrors.Report)
		r.Get("/com-errors", comErrors.List)
	})

	return r
}

// requestLogger logs each request's method, path, status, and duration
// once it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
