package fallback

import "testing"

func TestSafeString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		fallback string
		expected string
	}{
		{"plain string", "hello", "fb", "hello"},
		{"trims whitespace", "  hi  ", "fb", "hi"},
		{"empty uses fallback", "", "fb", "fb"},
		{"whitespace only uses fallback", "   ", "fb", "fb"},
		{"non-string uses fallback", 42, "fb", "fb"},
		{"nil uses fallback", nil, "fb", "fb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeString(tt.value, tt.fallback); got != tt.expected {
				t.Errorf("SafeString(%v) = %q, want %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestSafeInt(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		fallback int
		expected int
	}{
		{"float64", float64(7), 1, 7},
		{"int", 3, 1, 3},
		{"numeric string", "8", 1, 8},
		{"zero uses fallback", 0, 1, 1},
		{"negative uses fallback", -2, 1, 1},
		{"garbage string uses fallback", "abc", 1, 1},
		{"nil uses fallback", nil, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeInt(tt.value, tt.fallback); got != tt.expected {
				t.Errorf("SafeInt(%v) = %d, want %d", tt.value, got, tt.expected)
			}
		})
	}
}

func TestSafeDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected int
	}{
		{"in range", 6, 6},
		{"long duration passes through", 15, 15},
		{"zero uses fallback", 0, 5},
		{"negative uses fallback", -3, 5},
		{"string parses", "7", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeDuration(tt.value, 5); got != tt.expected {
				t.Errorf("SafeDuration(%v) = %d, want %d", tt.value, got, tt.expected)
			}
		})
	}
}

func TestSafeAspectRatio(t *testing.T) {
	if got := SafeAspectRatio(""); got != "16:9" {
		t.Errorf("SafeAspectRatio(\"\") = %q, want 16:9", got)
	}
	if got := SafeAspectRatio("9:16"); got != "9:16" {
		t.Errorf("SafeAspectRatio(9:16) = %q, want 9:16", got)
	}
}
