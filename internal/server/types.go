package server

import (
	"github.com/packsmith-labs/packsmith/internal/addon"
	"github.com/packsmith-labs/packsmith/internal/pack"
)

// StdResponse represents the standardized response structure.
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

// SessionResponse is returned when a session is opened.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
}

// UploadResponse lists the pool after an upload, including members
// extracted from uploaded containers.
type UploadResponse struct {
	SessionID string   `json:"sessionId"`
	Files     []string `json:"files"`
}

// GenerateRequest is the JSON body of a generation call.
type GenerateRequest struct {
	SessionID   string  `json:"sessionId"`
	Instruction string  `json:"instruction"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
}

// GenerateResponse carries the structured generation result.
type GenerateResponse struct {
	Result addon.Result `json:"result"`
}

// PackageRequest is the JSON body of an archive-assembly call. Files and
// relocations normally come straight from a previous GenerateResponse,
// possibly after in-editor edits.
type PackageRequest struct {
	SessionID   string                `json:"sessionId"`
	Name        string                `json:"name"`
	Files       []addon.GeneratedFile `json:"files"`
	Relocations []addon.Relocation    `json:"relocations"`
}

// PackageWarningsHeader carries the JSON-encoded packaging warnings next to
// the binary download body.
const PackageWarningsHeader = "X-Packsmith-Warnings"

type packageWarnings struct {
	Warnings []pack.Warning `json:"warnings"`
}
