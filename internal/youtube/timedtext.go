package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/cenkalti/backoff/v5"
)

// userAgentBot identifies plain caption downloads.
const userAgentBot = "GoTranscript/1.0"

// fetchTimedText downloads a timedtext XML caption URL and parses it into segments.
func (c *Client) fetchTimedText(ctx context.Context, baseURL string) ([]Segment, error) {
	if err := c.pace.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.getWithBackoff(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, err
	}
	return parseTimedText(body)
}

// getWithBackoff performs an HTTP GET with exponential backoff on retryable
// statuses. Transport errors and client errors are permanent.
func (c *Client) getWithBackoff(ctx context.Context, fetchURL string) (*http.Response, error) {
	operation := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgentBot)
		req.Header.Set("Accept", "text/xml,application/xml;q=0.9,*/*;q=0.8")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		if stealth.IsRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}

		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(30*time.Second))
}

// parseTimedText decodes timedtext XML into segments, caption order preserved.
// Lines that are empty after cleanup are dropped.
func parseTimedText(body []byte) ([]Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segs := make([]Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := cleanCaptionText(line.Text)
		if text == "" {
			continue
		}
		segs = append(segs, Segment{Text: text, Start: line.Start, Duration: line.Dur})
	}
	return segs, nil
}

var captionTagRe = regexp.MustCompile(`<[^>]+>`)

// cleanCaptionText strips inline markup and decodes the HTML entities left
// over after XML decoding (timedtext double-escapes entities in caption text).
func cleanCaptionText(s string) string {
	s = captionTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
