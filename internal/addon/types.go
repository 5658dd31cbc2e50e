// Package addon defines the domain model shared by the generation gateway
// and the packaging pipeline: generated pack files, user-supplied inputs,
// and the relocation instructions that tie them together.
package addon

// OriginKind tells where an uploaded input came from.
type OriginKind string

const (
	// OriginAsset is a loose file the user uploaded directly.
	OriginAsset OriginKind = "asset"
	// OriginAddonFile is a member extracted from an uploaded addon container.
	OriginAddonFile OriginKind = "addon_file"
)

// GeneratedFile is one text artifact produced by the model: a JSON
// definition, script, function file, or language file. Path is a
// forward-slash virtual path unique within one result; later writes to the
// same path overwrite earlier ones.
type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// UploadedInput is a file the user provided, either loose or extracted from
// an uploaded container. Name may be a short filename or a full internal
// path. Immutable once created.
type UploadedInput struct {
	Name   string     `json:"name"`
	Bytes  []byte     `json:"bytes"`
	Origin OriginKind `json:"origin"`
}

// IsContainer reports whether the input looks like a zip container that has
// not been extracted into individual members.
func (u UploadedInput) IsContainer() bool {
	if len(u.Bytes) < 4 {
		return false
	}
	return u.Bytes[0] == 'P' && u.Bytes[1] == 'K'
}

// Relocation instructs that the input identified by OriginalPath
// (suffix-matched against UploadedInput.Name) must appear in the final
// archive at NewPath. Not guaranteed to resolve; ordering among relocations
// is irrelevant.
type Relocation struct {
	OriginalPath string `json:"originalPath"`
	NewPath      string `json:"newPath"`
}

// Result is the structured output of one generation round: the files the
// model wrote, the relocations it requested for existing assets, and the
// optional plan/report prose. Serialized verbatim as the cache value.
type Result struct {
	Files       []GeneratedFile `json:"files"`
	Relocations []Relocation    `json:"relocations,omitempty"`
	Plan        string          `json:"plan,omitempty"`
	Report      string          `json:"report,omitempty"`
}

// Empty reports whether the result carries nothing usable at all.
func (r Result) Empty() bool {
	return len(r.Files) == 0 && len(r.Relocations) == 0 && r.Plan == "" && r.Report == ""
}
