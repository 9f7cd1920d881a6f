// Package git wraps go-git for the two things a generation run needs from
// version control: cloning a remote source into a workspace, and reading
// commit facts (author, last commit, remote URL) for a local path.
//
// Metadata lookups never fail the caller's run. A path outside any
// repository yields ErrNotRepository and callers simply omit the facts.
package git
