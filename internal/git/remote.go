package git

import (
	"net/url"
	"strings"
)

var remotePrefixes = []string{"https://", "http://", "ssh://", "git://", "git@"}

// IsRemoteURL reports whether s names a remote repository rather than a local path.
func IsRemoteURL(s string) bool {
	l := strings.ToLower(strings.TrimSpace(s))
	for _, p := range remotePrefixes {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}

// CanonicalURL converts a remote URL into its browsable HTTPS form:
// scp-style and ssh:// remotes become https, credentials and the .git
// suffix are dropped.
func CanonicalURL(remote string) string {
	r := strings.TrimSpace(remote)
	if r == "" {
		return ""
	}
	// scp-like: git@host:owner/repo.git
	if !strings.Contains(r, "://") {
		if at := strings.Index(r, "@"); at >= 0 {
			r = r[at+1:]
		}
		if i := strings.Index(r, ":"); i > 0 {
			r = "https://" + r[:i] + "/" + strings.TrimPrefix(r[i+1:], "/")
		}
		return strings.TrimSuffix(strings.TrimRight(r, "/"), ".git")
	}

	u, err := url.Parse(r)
	if err != nil {
		return strings.TrimSuffix(r, ".git")
	}
	switch u.Scheme {
	case "ssh", "git", "git+ssh", "http":
		u.Scheme = "https"
	}
	u.User = nil
	u.Host = u.Hostname()
	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), ".git")
	u.RawQuery, u.Fragment = "", ""
	return u.String()
}

// CommitURL builds a link to commit on the hosting service behind repoURL.
func CommitURL(repoURL, commit string) string {
	if repoURL == "" || commit == "" {
		return ""
	}
	base := strings.TrimRight(repoURL, "/")
	l := strings.ToLower(base)
	switch {
	case strings.Contains(l, "gitlab"):
		return base + "/-/commit/" + commit
	case strings.Contains(l, "bitbucket"):
		return base + "/commits/" + commit
	default:
		return base + "/commit/" + commit
	}
}

// RedactURL strips credentials from a URL for logging.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.User("redacted")
	return u.String()
}
