// Package errors classifies docweave failures.
//
// Every error that leaves a stage carries an ErrorCategory, which the CLI
// maps to an exit code, and a RetryStrategy, which tells callers whether
// another attempt can help. The stage packages define their own typed
// errors and satisfy Classifier directly; everything else (clone, output
// write, journal) is built through the fluent ErrorBuilder:
//
//	err := errors.GitError("clone failed").
//		WithCause(cause).
//		WithContext("url", redacted).
//		Build()
package errors
