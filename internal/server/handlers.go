package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/anatolykoptev/go_transcript/internal/youtube"
)

type transcriptRequest struct {
	// Pointer so a present-but-empty url is distinguishable from a
	// missing field: only the missing field is a validation error.
	URL *string `json:"url"`
}

type transcriptResponse struct {
	Transcript []youtube.Segment `json:"transcript"`
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "Server is running",
		"endpoints": map[string]string{
			"transcript": "/api/transcript",
			"health":     "/health",
		},
		"version": version,
	})
}

// handleHealth stays local: no collaborator calls, it can never fail.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"timestamp":   float64(s.now().UnixNano()) / 1e9,
		"environment": s.cfg.Environment,
		"service":     serviceName,
	})
}

// handleFavicon silences browser favicon probes.
func (s *Server) handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// handleTranscript resolves a video ID out of the posted URL and fetches its
// transcript. Resolution failures keep their historical 500 status; only a
// missing url field is a 400.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == nil {
		writeError(w, http.StatusBadRequest, errURLRequired)
		return
	}

	videoID, err := youtube.ResolveVideoID(*req.URL)
	if err != nil {
		slog.Error("transcript: resolve failed",
			slog.String("url", *req.URL), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	ctx := r.Context()
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	segments, err := s.fetcher.Fetch(ctx, videoID)
	if err != nil {
		s.fetchErrors.Add(1)
		slog.Error("transcript: fetch failed",
			slog.String("id", videoID), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	slog.Info("transcript fetched",
		slog.String("id", videoID), slog.Int("segments", len(segments)))
	if segments == nil {
		segments = []youtube.Segment{}
	}
	writeJSON(w, http.StatusOK, transcriptResponse{Transcript: segments})
}
