package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult: the first pass produced no files.
	ErrEmptyResult = errors.New("generation produced no files")
	// ErrUnparseable: the model response was not valid structured output.
	ErrUnparseable = errors.New("unparseable model response")
	// ErrVerificationEmpty: the correction pass returned zero files, meaning
	// the correction step itself misbehaved. Distinct from ErrEmptyResult.
	ErrVerificationEmpty = errors.New("verification produced no files")
)

// GenerationError is the single error type the gateway surfaces. It wraps
// either one of the sentinel errors above or a transport failure from the
// model client. Callers must not retry automatically; the user re-triggers.
type GenerationError struct {
	Stage string // "generate" or "verify"
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed during %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
