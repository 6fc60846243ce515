package tagging

import "strings"

// ParseTagList splits a comma separated list, trims each element, drops empty
// ones and removes duplicates keeping the first occurrence.
func ParseTagList(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims, drops empty strings and removes duplicates keeping the
// first occurrence. The result is never nil.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
