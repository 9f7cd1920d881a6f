package config

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// ErrorKind classifies a configuration resolution failure.
type ErrorKind string

const (
	ErrMissingEnvVar  ErrorKind = "missing_env_var"
	ErrInvalidValue   ErrorKind = "invalid_value"
	ErrFileUnreadable ErrorKind = "file_unreadable"
	ErrMalformedFile  ErrorKind = "malformed_file"
)

// Error is returned by Resolve. Exactly one of Key (MissingEnvVar) or
// Field/Reason (InvalidValue) or Path (file kinds) is meaningful per kind.
type Error struct {
	Kind   ErrorKind
	Key    string // environment variable name
	Field  string // dotted config field
	Reason string
	Path   string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrMissingEnvVar:
		return fmt.Sprintf("config: %s: environment variable %s is not set", e.Kind, e.Key)
	case ErrInvalidValue:
		return fmt.Sprintf("config: %s: %s: %s", e.Kind, e.Field, e.Reason)
	default:
		if e.Err != nil {
			return fmt.Sprintf("config: %s: %s: %v", e.Kind, e.Path, e.Err)
		}
		return fmt.Sprintf("config: %s: %s", e.Kind, e.Path)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Category implements errors.Classifier.
func (e *Error) Category() ferrors.ErrorCategory { return ferrors.CategoryConfig }

// RetryStrategy implements errors.Classifier; configuration problems need the user.
func (e *Error) RetryStrategy() ferrors.RetryStrategy { return ferrors.RetryUserAction }

func missingEnv(key string) *Error { return &Error{Kind: ErrMissingEnvVar, Key: key} }

func invalid(field, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidValue, Field: field, Reason: fmt.Sprintf(format, args...)}
}
