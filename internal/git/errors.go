package git

import (
	stdErrors "errors"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// ErrNotRepository is returned by Inspect for paths outside any repository.
var ErrNotRepository = stdErrors.New("not a git repository")

// ClassifyGitError translates go-git errors into ClassifiedErrors.
func ClassifyGitError(err error, op string, url string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	l := strings.ToLower(err.Error())
	var builder *errors.ErrorBuilder
	switch {
	case stdErrors.Is(err, git.ErrRepositoryNotExists):
		builder = errors.NewError(errors.CategoryNotFound, "repository not found")
	case strings.Contains(l, "authentication") || strings.Contains(l, "authorization") || strings.Contains(l, "invalid credentials") || strings.Contains(l, "could not read username"):
		builder = errors.AuthError("git authentication failed")
	case strings.Contains(l, "repository not found") || strings.Contains(l, "not found") || strings.Contains(l, "does not exist"):
		builder = errors.NewError(errors.CategoryNotFound, "repository not found")
	case strings.Contains(l, "rate limit") || strings.Contains(l, "too many requests"):
		builder = errors.GitError("git operation rate limited").WithRetry(errors.RetryRateLimit)
	case strings.Contains(l, "remote hung up") || strings.Contains(l, "connection reset") || strings.Contains(l, "timeout") || strings.Contains(l, "no route to host") || strings.Contains(l, "connection refused"):
		builder = errors.NetworkError("git network failure")
	case strings.Contains(l, "unsupported protocol") || strings.Contains(l, "protocol not supported") || strings.Contains(l, "unsupported scheme"):
		builder = errors.ValidationError("unsupported repository URL")
	default:
		builder = errors.GitError("git operation failed")
	}
	return builder.WithCause(err).WithContext("op", op).WithContext("url", RedactURL(url)).Build()
}
