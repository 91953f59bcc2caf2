// go_transcript is an HTTP service that turns a YouTube video URL into
// timed transcript segments.
//
// POST /api/transcript with {"url": ...} resolves the video ID and fetches
// the caption track. CORS, per-IP rate limiting, and security headers are
// applied to every route.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_transcript/internal/ratelimit"
	"github.com/anatolykoptev/go_transcript/internal/server"
	"github.com/anatolykoptev/go_transcript/internal/youtube"
)

func main() {
	environment := env.Str("ENVIRONMENT", "development")
	initLogging(environment, env.Str("LOG_FILE", "app.log"))

	port := env.Str("PORT", "5000")
	slog.Info("starting go_transcript",
		slog.String("port", port),
		slog.String("environment", environment),
	)

	yt := youtube.New(youtube.Config{
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		Browser: newBrowserClient(),
		RPS:     env.Float("YT_FETCH_RPS", 2),
	})

	store := ratelimit.NewStore(env.Str("REDIS_URL", ""))
	srv := server.New(server.Config{
		Addr:         ":" + port,
		Environment:  environment,
		FetchTimeout: env.Duration("FETCH_TIMEOUT", 30*time.Second),
	}, yt, ratelimit.New(store))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", slog.Any("error", err))
		}
	}
}

// initLogging routes logs to stderr and, when the file is writable, a local
// log file as well. Production keeps Info and above; anything else is verbose.
func initLogging(environment, logFile string) {
	level := slog.LevelDebug
	if environment == "production" {
		level = slog.LevelInfo
	}
	out := io.Writer(os.Stderr)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Warn("log file unavailable, logging to stderr only", slog.Any("error", err))
		} else {
			out = io.MultiWriter(os.Stderr, f)
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

// newBrowserClient builds the stealth client used for watch page fetches.
// A Webshare proxy pool is attached when WEBSHARE_API_KEY is set. Returns
// nil on init failure; the transcript client then uses plain HTTP.
func newBrowserClient() *stealth.BrowserClient {
	opts := []stealth.ClientOption{stealth.WithTimeout(15)}

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, using plain HTTP for watch pages", slog.Any("error", err))
		return nil
	}
	slog.Info("stealth browser client initialized")
	return bc
}
