package config

import (
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/git"
	"github.com/urfave/cli/v3"
)

// Git holds version control configuration
type Git struct {
	Binary string
	Remote string
	Branch string
	Paths  []string
}

// Flags returns CLI flags for git configuration
func (c *Git) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "git-binary",
			Usage:       "git executable",
			Value:       "git",
			Destination: &c.Binary,
			Sources:     cli.EnvVars("SHIPWRIGHT_GIT_BINARY"),
		},
		&cli.StringFlag{
			Name:        "git-remote",
			Usage:       "Remote receiving the release commit and tag",
			Value:       "origin",
			Destination: &c.Remote,
			Sources:     cli.EnvVars("SHIPWRIGHT_GIT_REMOTE"),
		},
		&cli.StringFlag{
			Name:        "git-branch",
			Usage:       "Branch receiving the release commit, the current branch when empty (required on a detached HEAD)",
			Destination: &c.Branch,
			Sources:     cli.EnvVars("SHIPWRIGHT_GIT_BRANCH"),
		},
		&cli.StringSliceFlag{
			Name:        "add",
			Usage:       "Path staged into the release commit (repeatable), the manifest when empty",
			Destination: &c.Paths,
			Sources:     cli.EnvVars("SHIPWRIGHT_GIT_ADD"),
		},
	}
}

// NewClient creates a git client working in dir
func (c *Git) NewClient(runner interfaces.CommandRunner, dir string) interfaces.GitClient {
	return git.NewClient(runner, dir, git.WithBinary(c.Binary))
}
