package git

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// tokenAuth returns HTTP basic auth carrying token for HTTPS URLs. SSH URLs
// rely on the user's agent and get no explicit auth method.
func tokenAuth(url, token string) transport.AuthMethod {
	if token == "" || !strings.HasPrefix(strings.ToLower(url), "https://") {
		return nil
	}
	return &http.BasicAuth{Username: "x-access-token", Password: token}
}
