// Package web serves the proposal form over HTTP.
//
// Each form lives in memory under a UUID. Edits are JSON requests against
// /api/forms/{formID}; every response carries the full form state with the
// message localized for the caller. HTMX requests get the status alert
// fragment instead.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/JonMunkholm/proposals/internal/config"
	"github.com/JonMunkholm/proposals/internal/core"
	"github.com/JonMunkholm/proposals/internal/i18n"
	"github.com/JonMunkholm/proposals/internal/metrics"
	"github.com/JonMunkholm/proposals/internal/web/middleware"
)

// Deps are the collaborators the server wires into each form.
type Deps struct {
	Config      *config.Config
	Transmitter core.Transmitter
	Limiter     *core.SubmitLimiter
	Metrics     *metrics.Collector
	Translator  *i18n.Translator
	Logger      *slog.Logger
}

// Server is the HTTP front end for form sessions.
type Server struct {
	cfg        *config.Config
	router     *chi.Mux
	server     *http.Server
	sessions   *SessionStore
	translator *i18n.Translator
	metrics    *metrics.Collector
	logger     *slog.Logger

	rate       *middleware.RateLimiter
	submitRate *middleware.RateLimiter
}

// NewServer creates a new Server instance.
func NewServer(d Deps) (*Server, error) {
	if d.Config == nil {
		return nil, errors.New("web: config is required")
	}
	if d.Translator == nil {
		return nil, errors.New("web: translator is required")
	}
	if d.Transmitter == nil {
		return nil, errors.New("web: transmitter is required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	s := &Server{
		cfg:        d.Config,
		router:     chi.NewRouter(),
		translator: d.Translator,
		metrics:    d.Metrics,
		logger:     d.Logger,
	}

	policy := core.AttachmentPolicy{MaxSize: d.Config.Attachment.MaxSize}
	factory := func(id uuid.UUID) *core.Controller {
		opts := []core.Option{core.WithID(id), core.WithPolicy(policy)}
		if d.Limiter != nil {
			opts = append(opts, core.WithLimiter(d.Limiter))
		}
		if d.Metrics != nil {
			opts = append(opts, core.WithObserver(d.Metrics))
		}
		return core.NewController(d.Transmitter, opts...)
	}
	var onChange func(int)
	if d.Metrics != nil {
		onChange = d.Metrics.SetActiveForms
	}
	s.sessions = NewSessionStore(d.Config.Session.IdleTTL, d.Config.Session.Max, factory, onChange)

	if d.Config.Rate.Enabled {
		s.rate = middleware.NewRateLimiter(d.Config.Rate.RequestsPerMinute, time.Minute)
		s.rate.OnLimit = s.rateLimited
		s.submitRate = middleware.NewRateLimiter(d.Config.Rate.SubmitLimit, time.Minute)
		s.submitRate.OnLimit = s.rateLimited
	}

	s.setupMiddleware()
	s.setupRoutes()

	// Built here so Shutdown before Start still stops the listener.
	s.server = &http.Server{
		Addr:         d.Config.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  d.Config.Server.ReadTimeout,
		WriteTimeout: d.Config.Server.WriteTimeout,
		IdleTimeout:  d.Config.Server.IdleTimeout,
	}
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.SecurityHeaders(s.cfg.Security.EnableCSP))
	if s.rate != nil {
		s.router.Use(s.rate.Handler)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		// Submissions run to completion, so they sit outside the timeout.
		submit := r.With()
		if s.submitRate != nil {
			submit = r.With(s.submitRate.Handler)
		}
		submit.Post("/forms/{formID}/submit", s.handleSubmit)

		r.Group(func(r chi.Router) {
			if s.cfg.Server.RequestTimeout > 0 {
				r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
			}

			r.Get("/options", s.handleOptions)

			r.Post("/forms", s.handleCreateForm)
			r.Get("/forms/{formID}", s.handleGetForm)
			r.Delete("/forms/{formID}", s.handleDeleteForm)

			r.Put("/forms/{formID}/fields/{field}", s.handleSetField)

			r.Post("/forms/{formID}/attachment", s.handleSelectAttachment)
			r.Delete("/forms/{formID}/attachment", s.handleClearAttachment)

			r.Post("/forms/{formID}/records", s.handleAddRecord)
			r.Delete("/forms/{formID}/records/{recordID}", s.handleRemoveRecord)
			r.Put("/forms/{formID}/records/{recordID}/{field}", s.handleUpdateRecord)
		})
	})
}

// Start runs the session sweeper and rate limiter cleanup, then listens
// until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	go s.sessions.Run(ctx)
	if s.rate != nil {
		go s.rate.Run(ctx)
		go s.submitRate.Run(ctx)
	}

	s.logger.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Sessions exposes the form store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	msg := core.UserMessage{Kind: core.KindError, Key: KeyRateLimited, Code: "WEB004"}
	s.writeMessage(w, r, msg, http.StatusTooManyRequests)
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
