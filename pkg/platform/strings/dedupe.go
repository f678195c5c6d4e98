// Package strings normalizes the id and name lists the pipeline reads from
// its environment and events.
package strings

import (
	"strings"
)

// DedupeAndTrim normalizes a list of identifiers: surrounding whitespace is
// trimmed, empty entries are dropped and the first occurrence of each id
// wins. Broker lists, topic lists and product-variant id batches all pass
// through here before use.
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower additionally lowercases each entry, for lists matched
// case-insensitively such as checklist names.
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, func(v string) string {
		return strings.ToLower(strings.TrimSpace(v))
	})
}

func dedupe(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
