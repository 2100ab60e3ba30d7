package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pmorales/devbank-mcp/internal/storage"
)

// Server exposes the diagram repository over HTTP
type Server struct {
	store  storage.Store
	logger *slog.Logger
	http   *http.Server
}

// NewServer creates the HTTP API server on addr
func NewServer(store storage.Store, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:  store,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	// stdout is reserved for the MCP stdio transport, so request logging
	// goes through slog on stderr instead of middleware.Logger
	r.Use(s.logRequests)

	r.Route("/api/diagrams", func(r chi.Router) {
		r.Get("/", s.handleListDiagrams)
		r.Post("/", s.handleCreateDiagram)
		r.Get("/search", s.handleSearchDiagrams)
		r.Get("/{id}", s.handleGetDiagram)
		r.Put("/{id}", s.handleUpdateDiagram)
		r.Delete("/{id}", s.handleDeleteDiagram)
		r.Post("/{id}/verify", s.handleVerifyDiagram)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, used directly in tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Serve starts the HTTP server and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// logRequests logs one line per request to stderr
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
