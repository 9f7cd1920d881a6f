package prompt

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// ErrorKind classifies a prompt construction failure.
type ErrorKind string

const (
	ErrEmptySource    ErrorKind = "empty_source"
	ErrBudgetExceeded ErrorKind = "budget_exceeded"
)

// Error is returned by Build.
type Error struct {
	Kind     ErrorKind
	Source   string
	Budget   int // input token budget
	Required int // tokens needed before any content block is added
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrBudgetExceeded:
		return fmt.Sprintf("prompt: %s: %s: instructions and metadata need ~%d tokens, budget is %d", e.Kind, e.Source, e.Required, e.Budget)
	default:
		return fmt.Sprintf("prompt: %s: %s: nothing to document", e.Kind, e.Source)
	}
}

// Category implements errors.Classifier.
func (e *Error) Category() ferrors.ErrorCategory { return ferrors.CategoryPrompt }

// RetryStrategy implements errors.Classifier. A budget overrun can be fixed
// by raising model.max_tokens.
func (e *Error) RetryStrategy() ferrors.RetryStrategy {
	if e.Kind == ErrBudgetExceeded {
		return ferrors.RetryUserAction
	}
	return ferrors.RetryNever
}
