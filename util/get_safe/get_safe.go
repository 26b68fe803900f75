package getsafe

import "time"

// Value returns payload[key] when it holds a T, otherwise the zero T.
func Value[T any](payload map[string]any, key string) T {
	var zero T
	if v, ok := payload[key]; ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	return zero
}

func String(payload map[string]any, key string) string {
	return Value[string](payload, key)
}

func Metadata(payload map[string]any, key string) map[string]any {
	return Value[map[string]any](payload, key)
}

// Time parses an RFC 3339 timestamp stored as a string. Missing or
// malformed values give the zero time.
func Time(payload map[string]any, key string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, String(payload, key))
	if err != nil {
		return time.Time{}
	}
	return t
}
