package assistant

// payloadString reads a string payload field, returning "" when absent or
// differently typed.
func payloadString(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

// payloadInt reads an integer payload field. Index backends return int64;
// in-process producers may use int.
func payloadInt(payload map[string]any, key string) (int64, bool) {
	switch n := payload[key].(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
