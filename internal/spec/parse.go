package spec

import (
	"fmt"
	"strings"
)

// ParseLabels parses newline separated key=value pairs.
// A key without "=" maps to an empty value; values may contain "=".
func ParseLabels(value string) (map[string]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	labels := make(map[string]string)
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, val, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &ValidationError{Field: "labels", Message: fmt.Sprintf("bad label line %q", line), Err: ErrInvalidValue}
		}
		labels[key] = strings.TrimSpace(val)
	}
	return labels, nil
}

// ParseList splits newline separated values, dropping blank lines.
func ParseList(value string) []string {
	var out []string
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
