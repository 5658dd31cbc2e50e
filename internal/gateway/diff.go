package gateway

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/packsmith-labs/packsmith/internal/addon"
)

// verificationDiff renders a unified diff of every file the correction pass
// changed, for debug logging. Files only present in one of the passes show
// up as whole-file additions or removals.
func verificationDiff(before, after []addon.GeneratedFile) string {
	prev := make(map[string]string, len(before))
	for _, f := range before {
		prev[f.Path] = f.Content
	}
	next := make(map[string]string, len(after))
	for _, f := range after {
		next[f.Path] = f.Content
	}

	var out strings.Builder
	for _, f := range after {
		old, existed := prev[f.Path]
		if existed && old == f.Content {
			continue
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(old),
			B:        difflib.SplitLines(f.Content),
			FromFile: f.Path,
			ToFile:   f.Path,
			Context:  3,
		})
		if err != nil {
			continue
		}
		out.WriteString(text)
	}
	for _, f := range before {
		if _, kept := next[f.Path]; kept {
			continue
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(f.Content),
			FromFile: f.Path,
			ToFile:   f.Path + " (removed)",
			Context:  3,
		})
		if err != nil {
			continue
		}
		out.WriteString(text)
	}
	return out.String()
}
