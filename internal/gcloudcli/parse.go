package gcloudcli

import (
	"strings"
)

// extractSecret returns the token secret name from kubectl describe
// serviceaccount output, i.e. the second field of the "Tokens:" line.
func extractSecret(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Tokens:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] == "<none>" {
			return "", false
		}
		return fields[1], true
	}
	return "", false
}

// extractTagValue returns the rest of the line following the first
// occurrence of tag, trimmed.
func extractTagValue(out, tag string) (string, bool) {
	i := strings.Index(out, tag)
	if i < 0 {
		return "", false
	}
	rest := strings.TrimSpace(out[i+len(tag):])
	if j := strings.Index(rest, "\n"); j >= 0 {
		rest = strings.TrimSpace(rest[:j])
	}
	return rest, rest != ""
}
