package youtube

import (
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};var x=2`, `{"a":1}`},
		{"nested", `{"a":{"b":{"c":3}}}tail`, `{"a":{"b":{"c":3}}}`},
		{"braces in string", `{"a":"}{","b":2}`, `{"a":"}{","b":2}`},
		{"escaped quote in string", `{"a":"say \"}\"","b":1};`, `{"a":"say \"}\"","b":1}`},
		{"not an object", `[1,2,3]`, ""},
		{"unterminated", `{"a":1`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON([]byte(tt.in))
			if tt.want == "" {
				if got != nil {
					t.Errorf("extractJSON(%q) = %q, want nil", tt.in, got)
				}
				return
			}
			if string(got) != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

const sampleWatchPage = `<!DOCTYPE html>
<html><head><title>watch</title>
<script>var early = "decoy";</script>
</head><body>
<script nonce="x">var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"https://www.youtube.com/api/timedtext?v=abc&lang=en","languageCode":"en"}]}}};var meta = {"key":"value"};</script>
</body></html>`

func TestPlayerResponseJSON(t *testing.T) {
	raw, err := playerResponseJSON([]byte(sampleWatchPage))
	if err != nil {
		t.Fatalf("playerResponseJSON error: %v", err)
	}
	s := string(raw)
	if !strings.HasPrefix(s, `{"playabilityStatus"`) {
		t.Errorf("unexpected prefix: %q", s)
	}
	if !strings.HasSuffix(s, `}`) || strings.Contains(s, "var meta") {
		t.Errorf("extraction ran past the player response: %q", s)
	}
	if !strings.Contains(s, `"languageCode":"en"`) {
		t.Errorf("caption track missing from extracted JSON: %q", s)
	}
}

func TestPlayerResponseJSONMissing(t *testing.T) {
	_, err := playerResponseJSON([]byte(`<html><body><script>var a = 1;</script></body></html>`))
	if err == nil {
		t.Error("expected error when marker is absent")
	}
}
