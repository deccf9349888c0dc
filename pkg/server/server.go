// Package server exposes a family tree over HTTP.
//
// # Routes
//
//	GET    /healthz                      liveness probe
//	GET    /metrics                      Prometheus metrics
//	GET    /api/members                  list members
//	POST   /api/members                  add a member
//	GET    /api/members/{id}             one member
//	PUT    /api/members/{id}             edit a member (creator only)
//	DELETE /api/members/{id}             delete a member (creator only)
//	PUT    /api/members/{id}/position    pin a member, body {"x":..,"y":..}
//	GET    /api/layout                   layout JSON
//	GET    /api/layout.svg               layout rendered by Graphviz
//	POST   /api/layout/reset             clear every pinned position
//
// The caller identity is read from the X-Actor header. Errors are written
// as {"code","message"} by [httputil.WriteError].
//
// The layout is served from a [session.Session], so it is only recomputed
// when the member set changes materially. Dragging a member updates the
// served layout in place. Member edits and layout resets invalidate the
// session.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/session"
	"github.com/matzehuels/kintree/pkg/store"
)

// ActorHeader carries the acting user's identity.
const ActorHeader = "X-Actor"

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 10 * time.Second

// Config wires a Server to its dependencies.
type Config struct {
	Service *store.Service
	Runner  *pipeline.Runner
	Session *session.Session
	// Metrics is served on /metrics when set.
	Metrics *observability.Metrics
	Logger  *log.Logger

	// Layout holds the order and spacing used for layouts and renders.
	Layout pipeline.Options

	Listen      string
	CORSOrigins []string
}

// Server is the HTTP API of one family tree.
type Server struct {
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New builds the router. Service, Runner and Session are required.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", ActorHeader, "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Layout-Recomputed"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.health)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/members", func(r chi.Router) {
			r.Get("/", s.listMembers)
			r.Post("/", s.createMember)
			r.Get("/{id}", s.getMember)
			r.Put("/{id}", s.updateMember)
			r.Delete("/{id}", s.deleteMember)
			r.Put("/{id}/position", s.updatePosition)
		})
		r.Get("/layout", s.getLayout)
		r.Get("/layout.svg", s.getLayoutSVG)
		r.Post("/layout/reset", s.resetLayout)
	})
	return r
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Listen)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs each request and reports it to the HTTP hooks under
// its route pattern.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			d := time.Since(start)
			observability.HTTP().OnRequest(r.Context(), r.Method, route, status, d)
			logger.Debug("http request",
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", d,
				"request_id", chimiddleware.GetReqID(r.Context()))
		})
	}
}
