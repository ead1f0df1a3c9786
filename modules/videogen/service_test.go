package videogen

import "testing"

func TestAppendAPIKey(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"bare uri", "https://example.com/video", "https://example.com/video?key=k1"},
		{"uri with existing query", "https://example.com/video?alt=media", "https://example.com/video?alt=media&key=k1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := appendAPIKey(tt.uri, "k1"); got != tt.want {
				t.Errorf("appendAPIKey(%q) = %q, want %q", tt.uri, got, tt.want)
			}
		})
	}
}
