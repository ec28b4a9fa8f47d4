package config

import (
	"path/filepath"

	"github.com/m-mizutani/shipwright/pkg/infra/pyproject"
	"github.com/m-mizutani/shipwright/pkg/utils/changelog"
	"github.com/urfave/cli/v3"
)

// Project holds the location of the Python project being released
type Project struct {
	Dir       string
	Manifest  string
	Changelog string
}

// Flags returns CLI flags for project configuration
func (c *Project) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dir",
			Aliases:     []string{"C"},
			Usage:       "Project root directory",
			Value:       ".",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("SHIPWRIGHT_DIR"),
		},
		&cli.StringFlag{
			Name:        "manifest",
			Usage:       "Manifest path relative to the project root; its version must be semantic (1.0.0-rc.1, not PEP 440 1.0.0rc1)",
			Value:       pyproject.DefaultPath,
			Destination: &c.Manifest,
			Sources:     cli.EnvVars("SHIPWRIGHT_MANIFEST"),
		},
		&cli.StringFlag{
			Name:        "changelog",
			Usage:       "Changelog path relative to the project root, empty to disable",
			Value:       changelog.DefaultPath,
			Destination: &c.Changelog,
			Sources:     cli.EnvVars("SHIPWRIGHT_CHANGELOG"),
		},
	}
}

// ManifestPath returns the manifest path joined to the project root
func (c *Project) ManifestPath() string {
	return c.resolve(c.Manifest)
}

// ChangelogPath returns the changelog path joined to the project root, or
// empty when disabled
func (c *Project) ChangelogPath() string {
	if c.Changelog == "" {
		return ""
	}
	return c.resolve(c.Changelog)
}

func (c *Project) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}
