package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub API configuration. A token is used unless GitHub App
// credentials are given.
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	Repository     string
	APIURL         string
	UploadURL      string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token with contents:write permission",
			Destination: &c.Token,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM content or file path)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-repository",
			Usage:       "Repository as owner/name, derived from the git remote when empty",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_REPOSITORY", "GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub Enterprise API URL, e.g. https://ghe.example.com/api/v3/",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_API_URL"),
		},
		&cli.StringFlag{
			Name:        "github-upload-url",
			Usage:       "GitHub Enterprise upload URL, derived from --github-api-url when empty",
			Destination: &c.UploadURL,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_UPLOAD_URL"),
		},
	}
}

// IsApp reports whether GitHub App credentials are configured
func (c *GitHub) IsApp() bool {
	return c.AppID != 0 && c.InstallationID != 0 && c.PrivateKey != ""
}

// NewClient creates the GitHub client from the configured credentials
func (c *GitHub) NewClient() (interfaces.GitHubClient, error) {
	var opts []github.Option
	if c.APIURL != "" {
		opts = append(opts, github.WithEnterpriseURLs(c.APIURL, c.UploadURL))
	}

	switch {
	case c.IsApp():
		return github.NewClientFromConfig(c.AppID, c.InstallationID, c.PrivateKey, opts...)
	case c.Token != "":
		return github.NewTokenClient(c.Token, opts...)
	default:
		return nil, goerr.New("GitHub credentials are required: set --github-token or GitHub App flags")
	}
}
