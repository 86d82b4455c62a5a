// Package web serves the importer over HTTP.
package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/leaddesk/internal/config"
	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/JonMunkholm/leaddesk/internal/logging"
	"github.com/JonMunkholm/leaddesk/internal/metrics"
	mw "github.com/JonMunkholm/leaddesk/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Importer is the part of importer.Service the handlers use.
type Importer interface {
	Import(ctx context.Context, req core.ImportRequest) (core.ImportResult, error)
	History(ctx context.Context, table string, limit int) ([]core.ImportRun, error)
	Ping(ctx context.Context) error
}

// Server is the HTTP front of the importer.
type Server struct {
	importer Importer
	limiter  *core.ImportLimiter
	metrics  *metrics.Metrics
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires routes and middleware. m may be nil, in which case
// /metrics is not served.
func NewServer(cfg *config.Config, imp Importer, limiter *core.ImportLimiter, m *metrics.Metrics) *Server {
	if limiter == nil {
		limiter = core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	}
	s := &Server{
		importer: imp,
		limiter:  limiter,
		metrics:  m,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(s.cfg.Security))
		if s.cfg.Rate.Enabled {
			r.Use(mw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst).Handler)
		}

		// The import route has its own, longer deadline.
		importRoute := r.With()
		if s.cfg.Rate.Enabled {
			importRoute = r.With(mw.NewRateLimiter(s.cfg.Rate.ImportLimit, s.cfg.Rate.Burst).Handler)
		}
		importRoute.Post("/import", s.handleImport)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
			r.Get("/tables", s.handleListTables)
			r.Get("/template/{table}", s.handleTemplate)
			r.Get("/imports", s.handleImportHistory)
		})
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	logging.FromContext(context.Background()).Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// securityHeaders sets headers suited to a JSON API that never renders HTML.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with status 200. Encoding errors are only logged since
// the header is already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode failed", "error", err)
	}
}
