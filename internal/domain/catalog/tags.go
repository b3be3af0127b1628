package catalog

import (
	"encoding/json"
	"strings"
)

// ParseTags normalizes a loose tag column into a clean string slice. The
// storefront admin stores these fields either as a JSON array or as a
// comma-separated list; both forms are accepted. Empty input yields an empty
// slice, which simply never matches anything downstream.
func ParseTags(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return cleanTags(items)
		}
	}

	return cleanTags(strings.Split(trimmed, ","))
}

func cleanTags(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if clean := strings.TrimSpace(item); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
