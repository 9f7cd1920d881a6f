package model

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

func TestStatusError(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{401, ErrAuthFailure},
		{403, ErrAuthFailure},
		{429, ErrRateLimited},
		{408, ErrTimeout},
		{504, ErrTimeout},
		{500, ErrTransportFailure},
		{503, ErrTransportFailure},
		{400, ErrInvalidResponse},
		{404, ErrInvalidResponse},
	}
	for _, tc := range cases {
		e := statusError("openai", tc.status, http.Header{}, "")
		require.Equal(t, tc.kind, e.Kind, "status %d", tc.status)
	}
}

func TestRetryStrategyByKind(t *testing.T) {
	require.Equal(t, ferrors.RetryRateLimit, (&Error{Kind: ErrRateLimited}).RetryStrategy())
	require.Equal(t, ferrors.RetryBackoff, (&Error{Kind: ErrTimeout}).RetryStrategy())
	require.Equal(t, ferrors.RetryBackoff, (&Error{Kind: ErrTransportFailure}).RetryStrategy())
	require.Equal(t, ferrors.RetryUserAction, (&Error{Kind: ErrAuthFailure}).RetryStrategy())
	require.Equal(t, ferrors.RetryNever, (&Error{Kind: ErrInvalidResponse}).RetryStrategy())
	require.Equal(t, ferrors.CategoryAuth, (&Error{Kind: ErrAuthFailure}).Category())
	require.Equal(t, ferrors.CategoryModel, (&Error{Kind: ErrTimeout}).Category())
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 3*time.Second, parseRetryAfter("3", now))
	require.Equal(t, time.Duration(0), parseRetryAfter("", now))
	require.Equal(t, time.Duration(0), parseRetryAfter("-1", now))
	require.Equal(t, 10*time.Second, parseRetryAfter(now.Add(10*time.Second).Format(http.TimeFormat), now))
	require.Equal(t, time.Duration(0), parseRetryAfter("soon", now))
}

func TestError_Message(t *testing.T) {
	e := &Error{Kind: ErrRateLimited, Provider: "openai", Status: 429, Detail: "slow down", RetryAfter: 2 * time.Second, Attempts: 3}
	require.Equal(t, "model: rate_limited: openai: HTTP 429: slow down (retry after 2s) after 3 attempts", e.Error())
}
