package fallback

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value interface{}, fallback string) string {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return fallback
}

// SafeInt converts common number shapes into int with a fallback.
func SafeInt(value interface{}, fallback int) int {
	switch v := value.(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case float32:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return int(v)
		}
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil && n > 0 {
			return n
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// SafeAspectRatio provides a sane default aspect ratio.
func SafeAspectRatio(value interface{}) string {
	return SafeString(value, "16:9")
}

// SafeResolution provides a sane default output resolution.
func SafeResolution(value interface{}) string {
	return SafeString(value, "720p")
}

// SafeDuration - 요청된 클립 길이, 0 이하면 fallback
// 모델이 실제로 내놓는 길이는 자체 한도가 있지만 요청값은 그대로 전달함
func SafeDuration(value interface{}, fallback int) int {
	d := SafeInt(value, fallback)
	if d < 1 {
		return fallback
	}
	return d
}
