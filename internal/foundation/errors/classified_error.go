package errors

import (
	stdErrors "errors"
	"sort"
)

// Classifier is implemented by every error that carries a category and a
// retry strategy: ClassifiedError and the typed stage errors.
type Classifier interface {
	error
	Category() ErrorCategory
	RetryStrategy() RetryStrategy
}

// ClassifiedError is a categorized error with optional cause and context.
type ClassifiedError struct {
	category ErrorCategory
	retry    RetryStrategy
	message  string
	cause    error
	context  map[string]any
}

// Error renders "<category>: <message>" followed by the cause when present.
func (e *ClassifiedError) Error() string {
	s := string(e.category) + ": " + e.message
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *ClassifiedError) Unwrap() error                { return e.cause }
func (e *ClassifiedError) Category() ErrorCategory      { return e.category }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string              { return e.message }

// Context returns one context value.
func (e *ClassifiedError) Context(key string) (any, bool) {
	v, ok := e.context[key]
	return v, ok
}

// ContextKeys returns the context keys in sorted order.
func (e *ClassifiedError) ContextKeys() []string {
	keys := make([]string, 0, len(e.context))
	for k := range e.context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Is matches another ClassifiedError with the same category and message,
// so package-level sentinels work with errors.Is.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

// AsClassifier finds the first Classifier in the error chain.
func AsClassifier(err error) (Classifier, bool) {
	var c Classifier
	if stdErrors.As(err, &c) {
		return c, true
	}
	return nil, false
}

// AsClassified finds the first ClassifiedError in the error chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if stdErrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HasCategory reports whether the first Classifier in the chain is in category.
func HasCategory(err error, category ErrorCategory) bool {
	return GetCategory(err) == category && err != nil
}

// GetCategory returns the category of the first Classifier in the chain, or
// CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if c, ok := AsClassifier(err); ok {
		return c.Category()
	}
	return CategoryInternal
}

// GetRetryStrategy returns the strategy of the first Classifier in the
// chain, or RetryNever.
func GetRetryStrategy(err error) RetryStrategy {
	if c, ok := AsClassifier(err); ok {
		return c.RetryStrategy()
	}
	return RetryNever
}
