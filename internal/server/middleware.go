package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"
)

// securityHeaders hardens every response, success and failure alike.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// cors reflects any origin (no allow-list) and answers preflight requests
// directly, so OPTIONS never reaches rate limiting or handlers.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if origin := r.Header.Get("Origin"); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
		} else {
			h.Set("Access-Control-Allow-Origin", "*")
		}
		h.Add("Vary", "Origin")
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanic converts anything escaping a handler into a JSON 500 with the
// generic envelope. The panic value and stack stay server-side.
func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("unhandled panic",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())))
				writeJSON(w, http.StatusInternalServerError, errorResponse{
					Error:  fmt.Sprint(rec),
					Status: "error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimit rejects over-budget clients before any handler work, body
// parsing included. Paths without a registered policy are not accounted.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		policy, ok := s.policies[r.URL.Path]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		// Buckets are scoped per client per route: spend on one route never
		// touches another route's budget, even under the same policy.
		d := s.limiter.Check(r.Context(), clientIP(r)+"|"+r.URL.Path, policy, s.now())
		if !d.Allowed {
			s.ratelimited.Add(1)
			// Expected operational condition, not a server fault.
			slog.Debug("rate limit exceeded",
				slog.String("client", clientIP(r)),
				slog.String("path", r.URL.Path),
				slog.String("window", d.Window.String()))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(d.RetryAfter)))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error: "rate limit exceeded: " + d.Window.String(),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog counts and records every request with its final status.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("took", time.Since(start)),
			slog.String("client", clientIP(r)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// clientIP keys buckets by the remote address host. Proxy headers are
// deliberately ignored; they are client-controlled.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfterSeconds rounds up so clients never retry inside the same window.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
