package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdWorkflow() *cli.Command {
	var (
		in       usecase.WorkflowInput
		dir      string
		output   string
		force    bool
		toStdout bool
	)

	return &cli.Command{
		Name:  "workflow",
		Usage: "Generate the GitHub Actions workflow publishing on v* tag pushes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"C"},
				Usage:       "Project root directory",
				Value:       ".",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Workflow file path relative to the project root",
				Value:       usecase.DefaultWorkflowPath,
				Destination: &output,
			},
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "Overwrite an existing workflow file",
				Destination: &force,
			},
			&cli.BoolFlag{
				Name:        "stdout",
				Usage:       "Print the workflow instead of writing it",
				Destination: &toStdout,
			},
			&cli.StringFlag{
				Name:        "name",
				Usage:       "Workflow name",
				Value:       "release",
				Destination: &in.Name,
			},
			&cli.StringFlag{
				Name:        "python-version",
				Usage:       "Python version of the build job",
				Value:       "3.x",
				Destination: &in.PythonVersion,
			},
			&cli.StringFlag{
				Name:        "go-version",
				Usage:       "Go version installing shipwright",
				Value:       "stable",
				Destination: &in.GoVersion,
			},
			&cli.StringFlag{
				Name:        "tool-version",
				Usage:       "shipwright version to install",
				Value:       "latest",
				Destination: &in.ToolVersion,
			},
			&cli.StringFlag{
				Name:        "index-secret",
				Usage:       "Repository secret holding the package index token, empty to skip the upload",
				Value:       "PYPI_API_TOKEN",
				Destination: &in.IndexSecret,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if toStdout {
				data, err := usecase.RenderWorkflow(&in)
				if err != nil {
					return err
				}
				_, err = c.Root().Writer.Write(data)
				return err
			}

			path := output
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			if err := usecase.WriteWorkflow(path, &in, force); err != nil {
				return err
			}

			ctxlog.From(ctx).Info("Wrote workflow", "path", path)
			_, err := fmt.Fprintln(c.Root().Writer, path)
			return err
		},
	}
}
