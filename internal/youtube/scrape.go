package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	stealth "github.com/anatolykoptev/go-stealth"
)

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// fetchViaWatchPage scrapes the YouTube watch page HTML and extracts the
// caption track list from ytInitialPlayerResponse. Works from any IP.
func (c *Client) fetchViaWatchPage(ctx context.Context, videoID string) ([]Segment, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID

	page, err := c.fetchWatchPage(ctx, watchURL)
	if err != nil {
		return nil, err
	}

	raw, err := playerResponseJSON(page)
	if err != nil {
		return nil, err
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(raw, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	tracks, err := captionTracksOf(playerResp)
	if err != nil {
		return nil, err
	}
	return c.segmentsFromTracks(ctx, tracks)
}

// fetchWatchPage downloads the watch page, through the stealth browser client
// when one is configured, else through the plain HTTP client.
func (c *Client) fetchWatchPage(ctx context.Context, watchURL string) ([]byte, error) {
	if err := c.pace.Wait(ctx); err != nil {
		return nil, err
	}

	if c.browser != nil {
		body, _, status, err := c.browser.Do(http.MethodGet, watchURL, stealth.ChromeHeaders(), nil)
		if err != nil {
			return nil, fmt.Errorf("watch page (browser): %w", err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("watch page (browser): HTTP %d", status)
		}
		return body, nil
	}

	resp, err := stealth.RetryHTTP(ctx, stealth.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", stealth.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return c.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}
	return body, nil
}

// playerResponseJSON locates the ytInitialPlayerResponse assignment inside the
// page's script elements and returns the balanced JSON object.
func playerResponseJSON(page []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}

	var raw []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, ytInitialPlayerResponseMarker)
		if idx < 0 {
			return true
		}
		raw = extractJSON([]byte(text[idx+len(ytInitialPlayerResponseMarker):]))
		return raw == nil
	})
	if raw == nil {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	return raw, nil
}

// extractJSON returns the balanced JSON object at the start of b, or nil.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}
