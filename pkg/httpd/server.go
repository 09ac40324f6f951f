// Package httpd exposes the DittoDrive API over HTTP.
//
// The API surface is a small JSON REST interface:
//
//	GET  /status                   - liveness of the cache and metadata store
//	GET  /stats                    - user and file counts
//	POST /users                    - register a new user
//	GET  /connect                  - exchange Basic credentials for a token
//	GET  /disconnect               - destroy the caller's session
//	GET  /users/me                 - the authenticated user
//	POST /files                    - upload a file, image or folder
//	GET  /files/{id}               - file metadata (owner only)
//	GET  /files                    - paginated listing under a parent
//	PUT  /files/{id}/publish       - make a file public
//	PUT  /files/{id}/unpublish     - make a file private
//	GET  /files/{id}/data          - raw content, optionally a thumbnail width
//
// Authentication is a session token in the X-Token header. Errors are JSON
// bodies of the form {"error": "..."}.
package httpd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/internal/ratelimiter"
	"github.com/marmos91/dittodrive/pkg/auth"
	"github.com/marmos91/dittodrive/pkg/cache"
	"github.com/marmos91/dittodrive/pkg/files"
	"github.com/marmos91/dittodrive/pkg/metadata"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// ListenAddr is the host:port to bind to.
	ListenAddr string

	// ShutdownTimeout is the maximum time to wait for in-flight requests
	// during graceful shutdown.
	ShutdownTimeout time.Duration

	// AuthRatePerSecond is the per-client sustained request rate on the
	// credential endpoints (/users, /connect). 0 disables limiting.
	AuthRatePerSecond float64

	// AuthRateBurst is the per-client burst capacity on the credential
	// endpoints.
	AuthRateBurst int
}

// Server is the DittoDrive HTTP server.
type Server struct {
	config ServerConfig

	auth  *auth.Service
	files *files.Service

	// meta and sessions are held directly for the /status liveness probes.
	meta     metadata.MetadataStore
	sessions cache.Cache

	// authLimiter throttles credential guessing per client address.
	authLimiter *ratelimiter.ClientLimiter

	metrics RequestMetrics

	httpServer *http.Server
}

// New creates an HTTP server over the given services. A nil requestMetrics
// disables metrics collection.
func New(config ServerConfig, authSvc *auth.Service, filesSvc *files.Service, meta metadata.MetadataStore, sessions cache.Cache, requestMetrics RequestMetrics) *Server {
	if requestMetrics == nil {
		requestMetrics = noopRequestMetrics{}
	}

	s := &Server{
		config:      config,
		auth:        authSvc,
		files:       filesSvc,
		meta:        meta,
		sessions:    sessions,
		authLimiter: ratelimiter.New(config.AuthRatePerSecond, config.AuthRateBurst),
		metrics:     requestMetrics,
	}

	s.httpServer = &http.Server{
		Addr:         config.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// routes builds the chi router with all endpoints and middleware.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/status", s.handleStatus)
	r.Get("/stats", s.handleStats)

	r.Post("/users", s.rateLimited(s.handleCreateUser))
	r.Get("/connect", s.rateLimited(s.handleConnect))
	r.Get("/disconnect", s.requireSession(s.handleDisconnect))
	r.Get("/users/me", s.requireSession(s.handleMe))

	r.Post("/files", s.requireSession(s.handleCreateFile))
	r.Get("/files", s.requireSession(s.handleListFiles))
	r.Get("/files/{id}", s.requireSession(s.handleGetFile))
	r.Put("/files/{id}/publish", s.requireSession(s.handlePublish(true)))
	r.Put("/files/{id}/unpublish", s.requireSession(s.handlePublish(false)))

	// The data endpoint authorizes per record (public files are readable
	// anonymously), so it resolves the session itself.
	r.Get("/files/{id}/data", s.handleGetFileData)

	return r
}

// Serve runs the HTTP server until ctx is cancelled or the listener fails,
// then shuts down gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context) error {
	serveErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening on %s", s.config.ListenAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("HTTP server stopped")
	return nil
}
