// Package api is the HTTP control surface for the trading daemon. It
// exposes the lifecycle commands, the current state, the audit log and
// profile management as a small JSON API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/daytrader/controller"
	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/metrics"
	"github.com/rustyeddy/daytrader/profiles"
	"github.com/rustyeddy/daytrader/state"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// Server serves the control API over HTTP.
type Server struct {
	router *mux.Router
	server *http.Server

	ctrl  *controller.Controller
	st    *state.Store
	jrnl  journal.Journal
	profs profiles.Store
}

// Options configures a Server.
type Options struct {
	Addr       string
	Controller *controller.Controller
	State      *state.Store
	Journal    journal.Journal
	Profiles   profiles.Store

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewServer(opts Options) *Server {
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	s := &Server{
		router: mux.NewRouter(),
		ctrl:   opts.Controller,
		st:     opts.State,
		jrnl:   opts.Journal,
		profs:  opts.Profiles,
	}
	s.routes()

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.timeoutMiddleware)

	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(jsonContentTypeMiddleware)

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/logs", s.handleLogs).Methods(http.MethodGet)

	api.HandleFunc("/start", s.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/pause", s.handlePause).Methods(http.MethodPost)
	api.HandleFunc("/resume", s.handleResume).Methods(http.MethodPost)
	api.HandleFunc("/emergency-exit", s.handleEmergencyExit).Methods(http.MethodPost)
	api.HandleFunc("/set-profile", s.handleSetProfile).Methods(http.MethodPost)

	api.HandleFunc("/profiles", s.handleListProfiles).Methods(http.MethodGet)
	api.HandleFunc("/profiles", s.handleCreateProfile).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{name}", s.handleGetProfile).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until it fails or is shut down.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.server.Addr).Msg("control API listening")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		id, _ := r.Context().Value(requestIDKey).(string)
		log.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
