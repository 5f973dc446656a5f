package record

import (
	"sort"
	"strconv"
	"strings"
)

var truthy = map[string]struct{}{
	"1":    {},
	"true": {},
	"t":    {},
	"yes":  {},
	"y":    {},
}

// ParseBoolInt maps a flag field to 0 or 1. Absent, empty and unrecognised
// values are 0.
func ParseBoolInt(raw string, ok bool) int {
	if !ok {
		return 0
	}
	if _, hit := truthy[strings.ToLower(strings.TrimSpace(raw))]; hit {
		return 1
	}
	return 0
}

// ParseIntOrNil returns nil for absent, blank or non-numeric input.
func ParseIntOrNil(raw string, ok bool) *int64 {
	if !ok {
		return nil
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// Text trims surrounding whitespace; absent input is "".
func Text(raw string, ok bool) string {
	if !ok {
		return ""
	}
	return strings.TrimSpace(raw)
}

// ParseTags splits a pipe-delimited tag list into its distinct trimmed
// values in ascending byte order. Case is preserved.
func ParseTags(raw string, ok bool) []string {
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	tags := make([]string, 0, strings.Count(raw, "|")+1)
	for _, part := range strings.Split(raw, "|") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
