package synth

import "strings"

// RedactHeaders returns a copy of in with the values of the listed headers
// replaced. Names match case-insensitively.
func RedactHeaders(in map[string]string, names []string, replacement string) map[string]string {
	if len(in) == 0 {
		return in
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(strings.ToLower(n)); n != "" {
			set[n] = struct{}{}
		}
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if _, ok := set[strings.ToLower(k)]; ok {
			out[k] = replacement
			continue
		}
		out[k] = v
	}
	return out
}
