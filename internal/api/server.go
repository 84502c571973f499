package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"faultline/internal/auth"
	"faultline/internal/dispatch"
	"faultline/internal/events"
	"faultline/internal/fault"
	"faultline/internal/journal"
)

// Submitter is the dispatch engine seam. Submit blocks until the dispatch
// thread is done with the command; for an armed terminal recipe that means
// the response never leaves this process.
type Submitter interface {
	Submit(ctx context.Context, raw []byte, maxLen int, origin dispatch.Origin) (int, error)
	Peek(raw []byte) (fault.Kind, string)
	Armed() bool
}

// IntentReader reads back the intent journal.
type IntentReader interface {
	Last(ctx context.Context) (*journal.Entry, error)
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
	Count(ctx context.Context) (int64, error)
}

// EventSource feeds the SSE endpoint.
type EventSource interface {
	Subscribe() (<-chan events.Event, func())
	SnapshotSince(lastID int64) []events.Event
}

// Config holds API server configuration.
type Config struct {
	Listen string
	// Tokens is the list of scoped bearer tokens.
	Tokens []auth.TokenConfig
	// MaxCommandBytes caps accepted command length on this boundary.
	MaxCommandBytes int
}

// Server represents the HTTP API server.
type Server struct {
	config    Config
	submitter Submitter
	registry  *fault.Registry
	journal   IntentReader
	events    EventSource
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new API server instance.
func New(config Config, submitter Submitter, registry *fault.Registry, intents IntentReader, events EventSource, logger *slog.Logger) *Server {
	if config.MaxCommandBytes <= 0 {
		config.MaxCommandBytes = dispatch.MaxCommandBytes
	}
	return &Server{
		config:    config,
		submitter: submitter,
		registry:  registry,
		journal:   intents,
		events:    events,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start starts the HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:        s.config.Listen,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// No write timeout: /events streams indefinitely, and an armed
		// submission holds its connection until the process dies.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("API server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Handler returns the configured router without binding a listener, for
// embedding the API under another mux or an in-process test server.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware. Recoverer only covers handler panics: recipes run on the
	// dispatch thread, out of its reach.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Unauthenticated: liveness and API discovery.
	r.Get("/healthz", s.handleHealthz)
	r.Get("/openapi.json", s.handleOpenAPI)

	// Protected API.
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.With(s.requireScopes(auth.ScopeRead)).Get("/faults", s.handleListFaults)
		r.With(s.requireScopes(auth.ScopeRead)).Get("/catalog", s.handleCatalog)
		r.With(s.requireScopes(auth.ScopeRead)).Get("/journal", s.handleJournal)
		r.With(s.requireScopes(auth.ScopeRead)).Get("/journal/last", s.handleJournalLast)
		r.With(s.requireScopes(auth.ScopeRead)).Get("/events", s.handleEvents)
		// Trigger scopes are enforced per resolved label inside the handlers.
		r.Post("/faults", s.handleSubmit)
		r.Post("/trigger/{label}", s.handleTrigger)
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// authMiddleware resolves the bearer token to a principal.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractBearerToken(r)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		principal, ok := auth.Authenticate(token, s.config.Tokens)
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	})
}

// requireScopes gates a route on the principal holding any listed scope.
func (s *Server) requireScopes(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := auth.PrincipalFromContext(r.Context())
			if !auth.HasAnyScope(principal, scopes...) {
				s.writeError(w, http.StatusForbidden, "insufficient scope")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
