// Package strings holds list helpers shared by config parsing.
package strings

import (
	"strings"
)

// DedupeAndTrim drops blanks and repeats after trimming. Order is preserved
// and a nil input stays nil.
func DedupeAndTrim(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// SplitList splits s on sep and cleans the parts with DedupeAndTrim. An
// empty or all-blank s yields nil.
func SplitList(s, sep string) []string {
	out := DedupeAndTrim(strings.Split(s, sep))
	if len(out) == 0 {
		return nil
	}
	return out
}
