package model

import "strings"

// Fragment is the generated source text for a single Exchange.
type Fragment struct {
	Index  int
	URL    string
	Method string
	Text   string
	// Err is set when generation failed for this exchange and the run continued.
	Err error
}

// Artifact is the combined output of one synthesis run, in exchange order.
type Artifact struct {
	Fragments []Fragment
}

// Text joins the non-empty fragments in order, separated by a blank line.
// A non-empty result always ends with a newline.
func (a *Artifact) Text() string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, len(a.Fragments))
	for _, f := range a.Fragments {
		t := strings.TrimSpace(f.Text)
		if t == "" {
			continue
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Failed returns the fragments whose generation failed.
func (a *Artifact) Failed() []Fragment {
	if a == nil {
		return nil
	}
	var out []Fragment
	for _, f := range a.Fragments {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}
