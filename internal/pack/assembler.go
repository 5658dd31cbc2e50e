// Package pack assembles generated text files, user-supplied assets and the
// model's relocation instructions into one downloadable addon archive.
package pack

import (
	"bytes"
	"fmt"
	"path"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"

	"github.com/packsmith-labs/packsmith/internal/addon"
)

// Assemble builds the final archive. Generated files are written first at
// their literal declared paths, then every relocation is resolved against
// the input pool and written at its new path. Colliding paths keep the entry
// order of the first write but the content of the last; unresolved
// relocations are skipped with a warning. Partial archives are acceptable
// since the generated text files are the functionally critical part.
func Assemble(name string, files []addon.GeneratedFile, inputs []addon.UploadedInput, relocations []addon.Relocation) ([]byte, []Warning, error) {
	order := make([]string, 0, len(files)+len(relocations))
	entries := make(map[string][]byte, len(files)+len(relocations))
	put := func(p string, data []byte) {
		if _, seen := entries[p]; !seen {
			order = append(order, p)
		}
		entries[p] = data
	}

	for _, f := range files {
		put(f.Path, []byte(f.Content))
	}

	var warnings []Warning
	for _, rel := range relocations {
		data, resolveWarnings, found := Resolve(rel.OriginalPath, inputs)
		warnings = append(warnings, resolveWarnings...)
		if !found {
			warnings = append(warnings, Warning{
				Kind:   WarnNotFound,
				Path:   rel.OriginalPath,
				Detail: fmt.Sprintf("no input matches, %s omitted from archive", rel.NewPath),
			})
			log.Warn().Str("original_path", rel.OriginalPath).Str("new_path", rel.NewPath).Msg("relocation unresolved, skipping")
			continue
		}
		put(rel.NewPath, data)
	}

	data, err := writeArchive(order, entries)
	if err != nil {
		return nil, warnings, err
	}
	log.Info().Str("name", name).Int("entries", len(order)).Int("warnings", len(warnings)).Msg("archive assembled")
	return data, warnings, nil
}

// AssembleFromRawContainers combines up to two pre-built containers without
// any regeneration: each is inserted unmodified at the archive root under
// its original filename. Used when the user's upload is already in final
// form.
func AssembleFromRawContainers(name string, containers ...addon.UploadedInput) ([]byte, error) {
	order := make([]string, 0, len(containers))
	entries := make(map[string][]byte, len(containers))
	for _, c := range containers {
		if len(c.Bytes) == 0 {
			continue
		}
		entry := path.Base(c.Name)
		if _, seen := entries[entry]; !seen {
			order = append(order, entry)
		}
		entries[entry] = c.Bytes
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("no containers to combine")
	}

	data, err := writeArchive(order, entries)
	if err != nil {
		return nil, err
	}
	log.Info().Str("name", name).Int("containers", len(order)).Msg("raw containers combined")
	return data, nil
}

func writeArchive(order []string, entries map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, p := range order {
		f, err := w.Create(p)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("create archive entry %s: %w", p, err)
		}
		if _, err := f.Write(entries[p]); err != nil {
			w.Close()
			return nil, fmt.Errorf("write archive entry %s: %w", p, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
