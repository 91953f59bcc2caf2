package youtube

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when no video ID can be extracted from a URL.
// The message is part of the API contract; clients receive it verbatim.
var ErrInvalidURL = errors.New("Invalid YouTube URL")

// ResolveVideoID extracts the video ID from a YouTube URL.
// youtube.com hosts take the v query parameter; anything else (youtu.be short
// links, scheme-less strings, bare paths) takes the last path segment.
// No format validation beyond non-emptiness: an ID that does not exist
// simply fails later, at fetch time.
func ResolveVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ErrInvalidURL
	}
	if strings.Contains(u.Host, "youtube.com") {
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		return "", ErrInvalidURL
	}
	id := u.Path[strings.LastIndex(u.Path, "/")+1:]
	if id == "" {
		return "", ErrInvalidURL
	}
	return id, nil
}
