// Package web provides the HTTP servers for the dataset and catalog APIs.
package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/csvapi/internal/config"
	mw "github.com/JonMunkholm/csvapi/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes is a set of handlers mounted on a Server's router.
type Routes interface {
	Mount(r chi.Router)
}

// HealthChecker is implemented by Routes whose backend can be probed.
// Its error turns /healthz into a 503.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Server is an HTTP server with the shared middleware stack.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	cfg     *config.Config
	limiter *mw.RateLimiter
	checks  []HealthChecker
}

// NewServer creates a Server serving every route set in routes.
func NewServer(cfg *config.Config, routes ...Routes) *Server {
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
	}
	s.setupMiddleware()

	s.router.Get("/healthz", s.handleHealth)
	for _, rt := range routes {
		rt.Mount(s.router)
		if hc, ok := rt.(HealthChecker); ok {
			s.checks = append(s.checks, hc)
		}
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(mw.SecurityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.limiter = mw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute)
		s.router.Use(mw.RateLimit(s.limiter))
	}
}

// Start begins listening for HTTP requests on the configured address.
// It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Close()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	for _, hc := range s.checks {
		if err := hc.Check(r.Context()); err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
