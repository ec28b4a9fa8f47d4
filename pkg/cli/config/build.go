package config

import (
	"strings"
	"time"

	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/builder"
	"github.com/urfave/cli/v3"
)

// Build holds package build configuration
type Build struct {
	Command string
	DistDir string
	NoClean bool
	Timeout time.Duration
}

// Flags returns CLI flags for build configuration
func (c *Build) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "build-command",
			Usage:       "Command producing the distributions",
			Value:       strings.Join(builder.DefaultCommand, " "),
			Destination: &c.Command,
			Sources:     cli.EnvVars("SHIPWRIGHT_BUILD_COMMAND"),
		},
		&cli.StringFlag{
			Name:        "dist-dir",
			Usage:       "Directory the build command writes into, relative to the project root",
			Value:       "dist",
			Destination: &c.DistDir,
			Sources:     cli.EnvVars("SHIPWRIGHT_DIST_DIR"),
		},
		&cli.BoolFlag{
			Name:        "no-clean",
			Usage:       "Keep existing files in the dist directory before building",
			Destination: &c.NoClean,
			Sources:     cli.EnvVars("SHIPWRIGHT_NO_CLEAN"),
		},
		&cli.DurationFlag{
			Name:        "command-timeout",
			Usage:       "Timeout of each external command, 0 for none",
			Value:       10 * time.Minute,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("SHIPWRIGHT_COMMAND_TIMEOUT"),
		},
	}
}

// NewBuilder creates the package builder
func (c *Build) NewBuilder(runner interfaces.CommandRunner) interfaces.Builder {
	opts := []builder.Option{
		builder.WithDistDir(c.DistDir),
		builder.WithClean(!c.NoClean),
	}
	if cmd := strings.Fields(c.Command); len(cmd) > 0 {
		opts = append(opts, builder.WithCommand(cmd...))
	}
	return builder.New(runner, opts...)
}
