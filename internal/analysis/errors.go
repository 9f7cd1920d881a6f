package analysis

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// ErrorKind classifies an analysis failure.
type ErrorKind string

const (
	ErrIOFailure           ErrorKind = "io_failure"
	ErrUnsupportedArtifact ErrorKind = "unsupported_artifact"
	ErrMalformedInput      ErrorKind = "malformed_input"
)

// Error is returned by Analyze.
type Error struct {
	Kind   ErrorKind
	Path   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("analysis: %s: %s", e.Kind, e.Path)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Category implements errors.Classifier. Unsupported input is the caller's
// to fix, so it classifies as validation.
func (e *Error) Category() ferrors.ErrorCategory {
	if e.Kind == ErrUnsupportedArtifact {
		return ferrors.CategoryValidation
	}
	return ferrors.CategoryAnalysis
}

// RetryStrategy implements errors.Classifier.
func (e *Error) RetryStrategy() ferrors.RetryStrategy {
	if e.Kind == ErrIOFailure {
		return ferrors.RetryUserAction
	}
	return ferrors.RetryNever
}

func ioFailure(path string, err error) *Error {
	return &Error{Kind: ErrIOFailure, Path: path, Err: err}
}

func malformed(path, format string, args ...any) *Error {
	return &Error{Kind: ErrMalformedInput, Path: path, Detail: fmt.Sprintf(format, args...)}
}
