package config

import (
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/pypi"
	"github.com/urfave/cli/v3"
)

// Index holds package index upload configuration. The upload is disabled
// unless a password or API token is set.
type Index struct {
	URL          string
	Username     string
	Password     string `masq:"secret"`
	SkipExisting bool
}

// Flags returns CLI flags for package index configuration
func (c *Index) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "index-url",
			Usage:       "Package index upload endpoint",
			Value:       pypi.DefaultRepositoryURL,
			Destination: &c.URL,
			Sources:     cli.EnvVars("SHIPWRIGHT_INDEX_URL", "TWINE_REPOSITORY_URL"),
		},
		&cli.StringFlag{
			Name:        "index-username",
			Usage:       "Package index user name",
			Value:       pypi.TokenUsername,
			Destination: &c.Username,
			Sources:     cli.EnvVars("SHIPWRIGHT_INDEX_USERNAME", "TWINE_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "index-password",
			Usage:       "Package index password or API token, upload is skipped when empty",
			Destination: &c.Password,
			Sources:     cli.EnvVars("SHIPWRIGHT_INDEX_PASSWORD", "PYPI_API_TOKEN", "TWINE_PASSWORD"),
		},
		&cli.BoolFlag{
			Name:        "index-skip-existing",
			Usage:       "Treat files already present on the index as uploaded",
			Destination: &c.SkipExisting,
			Sources:     cli.EnvVars("SHIPWRIGHT_INDEX_SKIP_EXISTING"),
		},
	}
}

// NewUploader creates the index uploader, or nil when no credential is set
func (c *Index) NewUploader() (interfaces.IndexUploader, error) {
	if c.Password == "" {
		return nil, nil
	}
	return pypi.New(c.Password,
		pypi.WithRepositoryURL(c.URL),
		pypi.WithUsername(c.Username),
		pypi.WithSkipExisting(c.SkipExisting),
	)
}
