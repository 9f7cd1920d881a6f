package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiedError_Format(t *testing.T) {
	err := NewError(CategoryConfig, "invalid configuration").Build()
	require.Equal(t, "config: invalid configuration", err.Error())

	wrapped := WrapError(errors.New("disk full"), CategoryFileSystem, "output write failed").Build()
	require.Equal(t, "filesystem: output write failed: disk full", wrapped.Error())
	require.Equal(t, "disk full", errors.Unwrap(wrapped).Error())
}

func TestClassifiedError_ChainLookup(t *testing.T) {
	err := fmt.Errorf("outer: %w", ConfigError("bad value").Build())

	require.True(t, HasCategory(err, CategoryConfig))
	require.False(t, HasCategory(err, CategoryGit))
	require.False(t, HasCategory(nil, CategoryInternal))
	require.Equal(t, CategoryConfig, GetCategory(err))
	require.Equal(t, RetryUserAction, GetRetryStrategy(err))

	ce, ok := AsClassified(err)
	require.True(t, ok)
	require.Equal(t, "bad value", ce.Message())

	require.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	require.Equal(t, RetryNever, GetRetryStrategy(errors.New("plain")))
}

func TestClassifiedError_SentinelMatching(t *testing.T) {
	sentinel := JournalError("append failed").Build()
	err := WrapError(errors.New("locked"), CategoryJournal, sentinel.Message()).Build()

	require.ErrorIs(t, err, sentinel)
	require.NotErrorIs(t, err, JournalError("query failed").Build())
}

func TestErrorBuilder(t *testing.T) {
	b := GitError("clone failed").WithContext("url", "https://example.com/r.git")
	first := b.Build()
	second := b.WithContext("op", "clone").WithRetry(RetryRateLimit).Build()

	require.Equal(t, RetryBackoff, first.RetryStrategy())
	require.Equal(t, RetryRateLimit, second.RetryStrategy())
	require.Equal(t, []string{"url"}, first.ContextKeys())
	require.Equal(t, []string{"op", "url"}, second.ContextKeys())

	v, ok := second.Context("op")
	require.True(t, ok)
	require.Equal(t, "clone", v)
}

func TestConstructorStrategies(t *testing.T) {
	tests := []struct {
		err      *ClassifiedError
		category ErrorCategory
		retry    RetryStrategy
	}{
		{ConfigError("x").Build(), CategoryConfig, RetryUserAction},
		{ValidationError("x").Build(), CategoryValidation, RetryUserAction},
		{AuthError("x").Build(), CategoryAuth, RetryUserAction},
		{NetworkError("x").Build(), CategoryNetwork, RetryBackoff},
		{GitError("x").Build(), CategoryGit, RetryBackoff},
		{FileSystemError("x").Build(), CategoryFileSystem, RetryNever},
		{JournalError("x").Build(), CategoryJournal, RetryNever},
		{InternalError("x").Build(), CategoryInternal, RetryNever},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			require.Equal(t, tt.category, tt.err.Category())
			require.Equal(t, tt.retry, tt.err.RetryStrategy())
		})
	}
}

func TestCanRetry(t *testing.T) {
	for s, want := range map[RetryStrategy]bool{
		RetryNever:      false,
		RetryUserAction: false,
		"":              false,
		RetryImmediate:  true,
		RetryBackoff:    true,
		RetryRateLimit:  true,
	} {
		require.Equal(t, want, CanRetry(s), s)
	}
}
