package model

import (
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Repository identifies a GitHub repository
type Repository struct {
	Owner string
	Name  string
}

// FullName returns "owner/name"
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether the repository is unset
func (r Repository) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// ParseRepository accepts "owner/name" or a GitHub remote URL in https,
// ssh or scp-like form.
func ParseRepository(s string) (Repository, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Repository{}, goerr.New("repository is empty")
	}

	path := raw
	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Repository{}, goerr.Wrap(err, "failed to parse repository URL", goerr.V("url", raw))
		}
		path = u.Path
	case strings.HasPrefix(raw, "git@"):
		idx := strings.Index(raw, ":")
		if idx < 0 {
			return Repository{}, goerr.New("invalid scp-like remote", goerr.V("url", raw))
		}
		path = raw[idx+1:]
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, goerr.New("repository must be in owner/name form", goerr.V("repository", raw))
	}

	return Repository{Owner: parts[0], Name: parts[1]}, nil
}
