package youtube

import (
	"errors"
	"testing"
)

func TestResolveVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url extra params", "https://www.youtube.com/watch?v=abc123&feature=share&t=42", "abc123"},
		{"watch url v not first", "https://www.youtube.com/watch?feature=share&v=abc123", "abc123"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with query", "https://youtu.be/abc123?t=10", "abc123"},
		{"shorts path", "https://m.youtube.com/shorts/xyz", "xyz"},
		{"no scheme youtube host", "youtube.com/watch?v=abc", "watch"},
		{"embed path other host", "https://example.com/embed/vid42", "vid42"},
		{"bare text", "not a url", "not a url"},
		{"unusual id length", "https://youtu.be/short", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveVideoID(tt.url)
			if err != nil {
				t.Fatalf("ResolveVideoID(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ResolveVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestResolveVideoIDInvalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty v param", "https://www.youtube.com/watch?v="},
		{"missing v param", "https://www.youtube.com/watch"},
		{"trailing slash", "https://youtu.be/"},
		{"empty string", ""},
		{"root path only", "https://example.com/"},
		{"unparsable url", "https://example.com/\x00bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveVideoID(tt.url)
			if err == nil {
				t.Fatalf("ResolveVideoID(%q) expected error", tt.url)
			}
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("ResolveVideoID(%q) error = %v, want ErrInvalidURL", tt.url, err)
			}
		})
	}
}

// The v parameter wins for any host containing youtube.com, ports and
// subdomains included.
func TestResolveVideoIDHostMatching(t *testing.T) {
	got, err := ResolveVideoID("https://music.youtube.com:443/watch?v=mmm")
	if err != nil {
		t.Fatalf("ResolveVideoID error: %v", err)
	}
	if got != "mmm" {
		t.Errorf("got %q, want %q", got, "mmm")
	}
}
