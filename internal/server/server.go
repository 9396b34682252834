// Package server exposes diagram sessions over HTTP.
//
// Each session owns a diagram controller. Clients create a session from a
// scene graph request, then drive the view (mode, direction, filter,
// selection, lock, manual positions) and read it back as JSON or SVG.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/topoview/pkg/diagram"
	"github.com/matzehuels/topoview/pkg/pipeline"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/session"
	"github.com/matzehuels/topoview/pkg/visual"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8080"

const (
	cleanupInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

// DocumentSource generates architecture documents.
type DocumentSource interface {
	GenerateDocument(ctx context.Context, vmID string, refresh bool) (*scene.Document, error)
}

// Options configures [New].
type Options struct {
	Addr     string
	Fetcher  diagram.Fetcher
	Runner   *pipeline.Runner
	Sessions *session.MemoryStore
	// Documents enables /api/documents. Nil disables the route.
	Documents DocumentSource
	// NewRequest builds the scene request when a client only sends a VM id.
	// Nil means scene.NewRequest.
	NewRequest func(vmID string) scene.Request
	Mode       projection.Mode
	Direction  visual.Direction
	Logger     *log.Logger
}

// Server is the HTTP API.
type Server struct {
	opts   Options
	router chi.Router
	logger *log.Logger
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore(session.DefaultTTL)
	}
	if opts.NewRequest == nil {
		opts.NewRequest = scene.NewRequest
	}
	if opts.Mode == "" {
		opts.Mode = projection.ModeSummary
	}
	if opts.Direction == "" {
		opts.Direction = visual.DirectionAuto
	}
	s := &Server{opts: opts, logger: opts.Logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.opts.Documents != nil {
			r.Get("/documents/{vm}", s.handleDocument)
		}
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.handleView)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/reload", s.handleReload)
			r.Put("/mode", s.handleMode)
			r.Put("/direction", s.handleDirection)
			r.Put("/filter", s.handleFilter)
			r.Put("/lock", s.handleLock)
			r.Post("/select", s.handleSelect)
			r.Put("/nodes/{node}/position", s.handleMove)
			r.Get("/svg", s.handleSVG)
			r.Get("/export/{format}", s.handleExport)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and drops every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.opts.Sessions.Run(ctx, cleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	err := srv.Shutdown(shutdownCtx)
	_ = s.opts.Sessions.Close()
	return err
}

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
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
