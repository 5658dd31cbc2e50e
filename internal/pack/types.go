package pack

import "fmt"

// WarningKind classifies a non-fatal packaging condition.
type WarningKind string

const (
	// WarnAmbiguousMatch: several inputs matched a relocation by suffix; the
	// first was used.
	WarnAmbiguousMatch WarningKind = "ambiguous_match"
	// WarnNotFound: no input matched a relocation by any strategy; the entry
	// was skipped.
	WarnNotFound WarningKind = "not_found"
)

// Warning is a structured, non-fatal packaging condition. Assembly proceeds;
// callers decide whether to surface it to the user.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Path   string      `json:"path"`
	Detail string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Path, w.Detail)
}
