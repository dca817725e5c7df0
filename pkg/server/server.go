// Package server exposes virtualization sessions over HTTP.
//
// A client posts a layout and its viewport to create a session, then
// streams viewport and scroll changes to it; every response carries the
// session's current canvas size and visible keys. The server holds one
// [store.Store] per session and indexes layouts through a
// [pipeline.Runner], so identical layouts posted by different clients
// share one cached index.
//
// # Routes
//
//	GET    /healthz
//	GET    /version
//	POST   /sessions                    create from a layout
//	GET    /sessions/{id}               current state and viewport
//	PATCH  /sessions/{id}               change viewport, scroll, overscan
//	PUT    /sessions/{id}/items         replace the layout
//	POST   /sessions/{id}/scroll-to     resolve a scroll-to-item target
//	DELETE /sessions/{id}
//
// Errors are JSON objects with a machine-readable code:
//
//	{"code": "SESSION_NOT_FOUND", "message": "session \"...\" not found"}
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/virtgrid/pkg/pipeline"
	"github.com/matzehuels/virtgrid/pkg/session"
)

// MaxBodySize caps request bodies.
const MaxBodySize = 32 << 20

// Server routes API requests to sessions.
type Server struct {
	runner   *pipeline.Runner
	sessions *session.Registry
	logger   *log.Logger
	router   chi.Router
}

// New creates a Server. A nil logger discards request logs.
func New(runner *pipeline.Runner, sessions *session.Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		runner:   runner,
		sessions: sessions,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/version", s.version)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Patch("/", s.updateSession)
			r.Delete("/", s.deleteSession)
			r.Put("/items", s.replaceItems)
			r.Post("/scroll-to", s.scrollTo)
		})
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the session registry.
func (s *Server) Sessions() *session.Registry { return s.sessions }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
