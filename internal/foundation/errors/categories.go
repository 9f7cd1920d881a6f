package errors

// ErrorCategory is the broad class of a failure. It decides the exit code.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"
	CategoryNotFound   ErrorCategory = "not_found"

	// Pipeline stages.
	CategoryAnalysis ErrorCategory = "analysis"
	CategoryPrompt   ErrorCategory = "prompt"
	CategoryRender   ErrorCategory = "render"

	// External systems.
	CategoryModel   ErrorCategory = "model"
	CategoryNetwork ErrorCategory = "network"
	CategoryGit     ErrorCategory = "git"

	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryJournal    ErrorCategory = "journal"
	CategoryInternal   ErrorCategory = "internal"
)

// RetryStrategy tells a caller whether and how to try again.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryImmediate  RetryStrategy = "immediate"
	RetryBackoff    RetryStrategy = "backoff"
	RetryRateLimit  RetryStrategy = "rate_limit"
	RetryUserAction RetryStrategy = "user"
)

// CanRetry reports whether a strategy permits another automatic attempt.
func CanRetry(strategy RetryStrategy) bool {
	switch strategy {
	case RetryImmediate, RetryBackoff, RetryRateLimit:
		return true
	default:
		return false
	}
}

// ExitCode maps a category to the process exit status.
func ExitCode(c ErrorCategory) int {
	switch c {
	case CategoryValidation:
		return 2
	case CategoryAuth:
		return 5
	case CategoryConfig:
		return 7
	case CategoryModel, CategoryNetwork, CategoryGit:
		return 8
	case CategoryInternal:
		return 10
	case CategoryAnalysis, CategoryPrompt, CategoryRender, CategoryFileSystem, CategoryNotFound:
		return 11
	default:
		return 1
	}
}
