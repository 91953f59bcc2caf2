// Package server wires the transcript API: four routes behind CORS,
// per-client rate limiting, security headers, and panic recovery.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/ratelimit"
	"github.com/anatolykoptev/go_transcript/internal/youtube"
)

const (
	version     = "1.0.0"
	serviceName = "youtube-transcript-api"
)

// TranscriptFetcher turns a video ID into timed segments. Failures are one
// opaque class; their string form is surfaced to the client as-is.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) ([]youtube.Segment, error)
}

// Config holds the server's injected settings.
type Config struct {
	Addr         string
	Environment  string
	FetchTimeout time.Duration // 0 disables the per-fetch deadline
}

// Server wires routes, middleware, and collaborators. Rate limit state lives
// in the injected limiter, never in package globals.
type Server struct {
	cfg       Config
	fetcher   TranscriptFetcher
	limiter   *ratelimit.Limiter
	policies  map[string]ratelimit.Policy
	srv       *http.Server
	now       func() time.Time // swapped in tests
	boundAddr atomic.Value     // listen address, set once Start binds

	requests    atomic.Int64
	fetchErrors atomic.Int64
	ratelimited atomic.Int64
}

// defaultPolicy applies to registered routes without an override.
var defaultPolicy = ratelimit.Policy{ratelimit.PerDay(200), ratelimit.PerHour(50)}

// routePolicies maps each route to its budget. An override replaces the
// default entirely, it does not stack on top of it.
func routePolicies() map[string]ratelimit.Policy {
	return map[string]ratelimit.Policy{
		"/":               {ratelimit.PerMinute(10)},
		"/api/transcript": {ratelimit.PerHour(100)},
		"/health":         defaultPolicy,
		"/favicon.ico":    defaultPolicy,
	}
}

// New builds a Server around its collaborators.
func New(cfg Config, fetcher TranscriptFetcher, limiter *ratelimit.Limiter) *Server {
	s := &Server{
		cfg:      cfg,
		fetcher:  fetcher,
		limiter:  limiter,
		policies: routePolicies(),
		now:      time.Now,
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the complete middleware-wrapped route handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/transcript", s.handleTranscript)
	mux.HandleFunc("GET /favicon.ico", s.handleFavicon)

	// Innermost to outermost. Rate limiting sits directly in front of the
	// mux so a 429 still carries the CORS and security headers set above
	// it, and panics anywhere below the recoverer become JSON 500s.
	var h http.Handler = mux
	h = s.rateLimit(h)
	h = s.recoverPanic(h)
	h = s.cors(h)
	h = s.securityHeaders(h)
	h = s.accessLog(h)
	return h
}

// Start begins serving and blocks until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.boundAddr.Store(ln.Addr().String())
	slog.Info("server listening",
		slog.String("addr", ln.Addr().String()),
		slog.String("environment", s.cfg.Environment))
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr reports the bound listen address, or "" before Start has bound one.
// Configs listening on port 0 read the chosen port from here.
func (s *Server) Addr() string {
	addr, _ := s.boundAddr.Load().(string)
	return addr
}

// Shutdown drains in-flight requests and logs final counters.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	slog.Info("server stopped",
		slog.Int64("requests", s.requests.Load()),
		slog.Int64("fetch_errors", s.fetchErrors.Load()),
		slog.Int64("rate_limited", s.ratelimited.Load()))
	return err
}
