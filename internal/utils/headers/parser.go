// Package headers parses "Key: Value" header lines from flags and env.
package headers

import (
	"fmt"
	"net/http"
	"strings"
)

// Parse converts header lines ("Key: Value") into a map keyed by the
// canonical header name. Blank lines are skipped; a line without a colon or
// with an empty key is an error. Later lines override earlier ones.
func Parse(lines []string) (map[string]string, error) {
	m := make(map[string]string)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("invalid header %q (want \"Key: Value\")", line)
		}
		m[http.CanonicalHeaderKey(key)] = strings.TrimSpace(value)
	}
	return m, nil
}

// Lines splits an env value holding one header per line
func Lines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
