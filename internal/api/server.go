package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vidyasangam/assist/internal/chat"
)

type Server struct {
	router  *chi.Mux
	port    int
	hub     *chat.Hub
	limiter *ownerLimiter
	logger  *slog.Logger
	http    *http.Server
}

// Options configure the optional parts of the API.
type Options struct {
	APIToken  string
	RateLimit float64 // sends per second per owner, <= 0 disables limiting
	RateBurst int
}

func NewServer(port int, hub *chat.Hub, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		hub:     hub,
		limiter: newOwnerLimiter(opts.RateLimit, opts.RateBurst),
		logger:  logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/assist/status", s.status)

	router.Route("/api/v1/chat/{owner}", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(opts.APIToken))
		r.Use(ownerMiddleware)

		r.Get("/", s.getSnapshot)
		r.Get("/events", s.streamEvents)
		r.With(s.limiter.middleware).Post("/messages", s.postMessage)
		r.With(s.limiter.middleware).Post("/suggestions", s.postSuggestion)
		r.Post("/new", s.postNewChat)
		r.Post("/clear", s.postClear)
		r.Get("/archive", s.getArchive)
		r.Post("/archive/{id}/restore", s.postRestore)
		r.Get("/tips", s.getTips)
		r.Put("/tips", s.putTips)
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":  "assist",
		"status": "ready",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
