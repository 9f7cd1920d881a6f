package render

import (
	"fmt"
	"regexp"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// ErrorKind classifies a rendering failure.
type ErrorKind string

const (
	ErrTemplateNotFound  ErrorKind = "template_not_found"
	ErrUndefinedVariable ErrorKind = "undefined_variable"
	ErrTemplateInvalid   ErrorKind = "template_invalid"
	ErrExecutionFailed   ErrorKind = "execution_failed"
)

// Error is returned by the registry and by Render.
type Error struct {
	Kind     ErrorKind
	Template string
	Path     string
	Key      string // undefined context key
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrTemplateNotFound:
		if e.Path != "" {
			return fmt.Sprintf("render: %s: %s (%s)", e.Kind, e.Template, e.Path)
		}
		return fmt.Sprintf("render: %s: %s", e.Kind, e.Template)
	case ErrUndefinedVariable:
		return fmt.Sprintf("render: %s: template %s references undefined key %q", e.Kind, e.Template, e.Key)
	default:
		return fmt.Sprintf("render: %s: template %s: %v", e.Kind, e.Template, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Category implements errors.Classifier.
func (e *Error) Category() ferrors.ErrorCategory {
	if e.Kind == ErrTemplateNotFound {
		return ferrors.CategoryNotFound
	}
	return ferrors.CategoryRender
}

// RetryStrategy implements errors.Classifier; broken templates need fixing.
func (e *Error) RetryStrategy() ferrors.RetryStrategy { return ferrors.RetryUserAction }

var missingKeyRE = regexp.MustCompile(`map has no entry for key "([^"]*)"`)

// execError maps a text/template execution error to an Error.
func execError(name string, err error) *Error {
	if m := missingKeyRE.FindStringSubmatch(err.Error()); m != nil {
		return &Error{Kind: ErrUndefinedVariable, Template: name, Key: m[1], Err: err}
	}
	return &Error{Kind: ErrExecutionFailed, Template: name, Err: err}
}
