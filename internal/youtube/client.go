package youtube

import (
	"errors"
	"net/http"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/time/rate"
)

// Client fetches YouTube caption transcripts.
// Primary:  scrape the watch page for ytInitialPlayerResponse (works from any IP).
// Fallback: ANDROID Innertube /player (works from non-blocked IPs).
type Client struct {
	http    *http.Client
	browser *stealth.BrowserClient
	pace    *rate.Limiter
	langs   []string
}

// Config carries the collaborators a Client needs. Zero values get defaults.
type Config struct {
	HTTPClient *http.Client           // nil picks a tuned default
	Browser    *stealth.BrowserClient // optional, used for watch page fetches
	RPS        float64                // outbound requests/second toward YouTube
	Burst      int
}

// New builds a transcript client. English tracks are preferred; auto-generated
// tracks are accepted when no manual track exists.
func New(cfg Config) *Client {
	c := &Client{
		http:    cfg.HTTPClient,
		browser: cfg.Browser,
		langs:   []string{"en"},
	}
	if c.http == nil {
		c.http = newHTTPClient()
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 4
	}
	c.pace = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// newHTTPClient creates an HTTP client with proper settings for YouTube endpoints.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}
