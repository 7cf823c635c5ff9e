package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseValue reads a command-line metadata value. JSON literals (numbers,
// booleans, null, arrays, objects, quoted strings) are decoded, anything
// else is taken as a plain string.
func ParseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// ParsePairs reads key=value arguments into a metadata map.
func ParsePairs(pairs []string) (map[string]any, error) {
	meta := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got '%s'", pair)
		}
		meta[key] = ParseValue(value)
	}
	return meta, nil
}
