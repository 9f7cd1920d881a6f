package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// ErrorKind classifies a model invocation failure.
type ErrorKind string

const (
	ErrAuthFailure      ErrorKind = "auth_failure"
	ErrRateLimited      ErrorKind = "rate_limited"
	ErrTimeout          ErrorKind = "timeout"
	ErrTransportFailure ErrorKind = "transport_failure"
	ErrInvalidResponse  ErrorKind = "invalid_response"
)

// Error is returned by backends and by Invoke.
type Error struct {
	Kind       ErrorKind
	Provider   string
	Status     int           // HTTP status, 0 when no response was received
	RetryAfter time.Duration // server-supplied hint for RateLimited
	Detail     string
	Attempts   int // set by Invoke on the error it returns
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "model: %s", e.Kind)
	if e.Provider != "" {
		fmt.Fprintf(&b, ": %s", e.Provider)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&b, " (retry after %s)", e.RetryAfter)
	}
	if e.Attempts > 1 {
		fmt.Fprintf(&b, " after %d attempts", e.Attempts)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Category implements errors.Classifier.
func (e *Error) Category() ferrors.ErrorCategory {
	if e.Kind == ErrAuthFailure {
		return ferrors.CategoryAuth
	}
	return ferrors.CategoryModel
}

// RetryStrategy implements errors.Classifier. Only transient kinds are
// retryable.
func (e *Error) RetryStrategy() ferrors.RetryStrategy {
	switch e.Kind {
	case ErrRateLimited:
		return ferrors.RetryRateLimit
	case ErrTimeout, ErrTransportFailure:
		return ferrors.RetryBackoff
	case ErrAuthFailure:
		return ferrors.RetryUserAction
	default:
		return ferrors.RetryNever
	}
}

// maxDetail bounds how much of an error body ends up in messages.
const maxDetail = 300

// statusError maps a non-2xx response to an Error.
func statusError(provider string, status int, header http.Header, detail string) *Error {
	if len(detail) > maxDetail {
		detail = detail[:maxDetail] + "..."
	}
	e := &Error{Provider: provider, Status: status, Detail: detail}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = ErrAuthFailure
	case status == http.StatusTooManyRequests:
		e.Kind = ErrRateLimited
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"), time.Now())
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		e.Kind = ErrTimeout
	case status >= 500:
		e.Kind = ErrTransportFailure
	default:
		e.Kind = ErrInvalidResponse
	}
	return e
}

// transportError classifies a failed round trip. Deadline and cancellation
// both surface as Timeout.
func transportError(ctx context.Context, provider string, err error) *Error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: ErrTimeout, Provider: provider, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: ErrTimeout, Provider: provider, Err: err}
	}
	return &Error{Kind: ErrTransportFailure, Provider: provider, Err: err}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
