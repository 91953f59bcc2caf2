package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Segment is one timed line of a transcript. Start and Duration are seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Fetch returns the transcript of a video as timed segments, in caption order.
// Strategies are tried in order; the last error wins when all fail.
func (c *Client) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	segs, err := c.fetchViaWatchPage(ctx, videoID)
	if err == nil {
		return segs, nil
	}
	slog.Warn("youtube: watch page scrape failed, trying player",
		slog.String("id", videoID), slog.Any("err", err))

	return c.fetchViaPlayer(ctx, videoID)
}

// fetchViaPlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func (c *Client) fetchViaPlayer(ctx context.Context, videoID string) ([]Segment, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	if err := c.pace.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := stealth.RetryHTTP(ctx, stealth.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytPlayerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return c.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()

	var playerResp innertubePlayerResp
	if err := json.NewDecoder(resp.Body).Decode(&playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	tracks, err := captionTracksOf(playerResp)
	if err != nil {
		return nil, err
	}
	return c.segmentsFromTracks(ctx, tracks)
}

// captionTracksOf pulls the track list out of a player response, surfacing
// the playability reason when captions are missing.
func captionTracksOf(resp innertubePlayerResp) ([]captionTrack, error) {
	if resp.Captions == nil {
		if resp.PlayabilityStatus != nil && resp.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", resp.PlayabilityStatus.Reason)
		}
		return nil, errors.New("no captions in player response")
	}
	tracks := resp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.New("no caption tracks")
	}
	return tracks, nil
}

// segmentsFromTracks picks the best usable track and fetches its timedtext.
func (c *Client) segmentsFromTracks(ctx context.Context, tracks []captionTrack) ([]Segment, error) {
	track, ok := pickTrack(tracks, c.langs)
	if !ok {
		return nil, errors.New("all caption tracks require PoToken")
	}
	return c.fetchTimedText(ctx, track.BaseURL)
}

// needsPoToken reports whether a caption track URL requires a PoToken.
// Tracks with &exp=xpe cannot be fetched server-side, only in a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack selects the best usable caption track for the given language
// preferences, skipping tracks that require a PoToken.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return tracks[0], false
	}
	// 1. Manual track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	// 2. Auto-generated track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	// 3. Any English track
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}
