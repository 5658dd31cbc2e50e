package pack

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"

	"github.com/packsmith-labs/packsmith/internal/addon"
)

// Resolve finds the source bytes for a relocation's original path among the
// uploaded inputs. Strategy, in order: exact name match among extracted
// inputs, then suffix match (first wins, with an ambiguity warning), then a
// scan inside container-typed inputs that were never extracted. The model is
// handed filenames without guaranteed path fidelity, so suffix matching is
// the pragmatic compromise; its occasional ambiguity is reported rather than
// silently resolved.
func Resolve(originalPath string, inputs []addon.UploadedInput) ([]byte, []Warning, bool) {
	var warnings []Warning

	for _, in := range inputs {
		if in.IsContainer() {
			continue
		}
		if in.Name == originalPath {
			return in.Bytes, warnings, true
		}
	}

	var suffixMatches []addon.UploadedInput
	for _, in := range inputs {
		if in.IsContainer() {
			continue
		}
		if matchesSuffix(in.Name, originalPath) {
			suffixMatches = append(suffixMatches, in)
		}
	}
	if len(suffixMatches) > 0 {
		if len(suffixMatches) > 1 {
			names := make([]string, len(suffixMatches))
			for i, in := range suffixMatches {
				names[i] = in.Name
			}
			warnings = append(warnings, Warning{
				Kind:   WarnAmbiguousMatch,
				Path:   originalPath,
				Detail: fmt.Sprintf("matched %s, using %s", strings.Join(names, ", "), names[0]),
			})
			log.Warn().Str("original_path", originalPath).Strs("matches", names).Msg("ambiguous asset match, using first")
		}
		return suffixMatches[0].Bytes, warnings, true
	}

	for _, in := range inputs {
		if !in.IsContainer() {
			continue
		}
		data, found := searchContainer(in, originalPath)
		if found {
			return data, warnings, true
		}
	}

	return nil, warnings, false
}

// matchesSuffix tolerates the model echoing back a short filename for an
// input uploaded under a fuller internal path, and the reverse.
func matchesSuffix(name, originalPath string) bool {
	return strings.HasSuffix(name, originalPath) || strings.HasSuffix(originalPath, name)
}

func searchContainer(in addon.UploadedInput, originalPath string) ([]byte, bool) {
	r, err := zip.NewReader(bytes.NewReader(in.Bytes), int64(len(in.Bytes)))
	if err != nil {
		log.Warn().Err(err).Str("container", in.Name).Msg("container unreadable during asset search")
		return nil, false
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !matchesSuffix(f.Name, originalPath) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			log.Warn().Err(err).Str("entry", f.Name).Str("container", in.Name).Msg("container entry unreadable")
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Warn().Err(err).Str("entry", f.Name).Str("container", in.Name).Msg("container entry unreadable")
			continue
		}
		return data, true
	}
	return nil, false
}

// ExtractContainer expands an uploaded zip container into one UploadedInput
// per member, named by the member's full internal path. Directories are
// skipped.
func ExtractContainer(in addon.UploadedInput) ([]addon.UploadedInput, error) {
	r, err := zip.NewReader(bytes.NewReader(in.Bytes), int64(len(in.Bytes)))
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", in.Name, err)
	}

	var members []addon.UploadedInput
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s in %s: %w", f.Name, in.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read entry %s in %s: %w", f.Name, in.Name, err)
		}
		members = append(members, addon.UploadedInput{
			Name:   f.Name,
			Bytes:  data,
			Origin: addon.OriginAddonFile,
		})
	}
	return members, nil
}
