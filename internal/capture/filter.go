package capture

import (
	"slices"
	"strings"
)

// Filter decides which network entries are projected into exchanges.
type Filter func(Entry) bool

// ResourceTypes matches entries whose resource type is one of types
// (case-insensitive). With no types it matches nothing.
func ResourceTypes(types ...string) Filter {
	want := make([]string, 0, len(types))
	for _, t := range types {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			want = append(want, t)
		}
	}
	return func(e Entry) bool {
		return slices.Contains(want, strings.ToLower(e.ResourceType))
	}
}

var (
	// XHROnly matches XMLHttpRequest traffic. This is the default.
	XHROnly = ResourceTypes("XHR")

	// XHRAndFetch also includes requests issued through fetch().
	XHRAndFetch = ResourceTypes("XHR", "Fetch")
)

// And combines filters; an entry must satisfy all of them.
func And(filters ...Filter) Filter {
	return func(e Entry) bool {
		for _, f := range filters {
			if f != nil && !f(e) {
				return false
			}
		}
		return true
	}
}

// Completed drops entries that failed or never finished loading.
func Completed(e Entry) bool {
	return e.Finished && !e.Failed
}
