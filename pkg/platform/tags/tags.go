// Package tags normalizes free-form label lists such as skills, interests
// and causes.
package tags

import "strings"

// Normalize trims each value, drops empties, and removes case-insensitive
// duplicates. The first spelling of each tag and the input order are kept.
//
//	Normalize([]string{" Teaching ", "teaching", "", "First Aid"})
//	// []string{"Teaching", "First Aid"}
func Normalize(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// ContainsFold reports whether values contains v ignoring case.
func ContainsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
