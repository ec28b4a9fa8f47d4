package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdTag() *cli.Command {
	var (
		p       pipeline
		message string
	)

	flags := append(p.project.Flags(), p.git.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "message",
		Aliases:     []string{"m"},
		Usage:       "Commit and tag message, \"Release v<version>\" when empty",
		Destination: &message,
	})

	return &cli.Command{
		Name:  "tag",
		Usage: "Commit, push and (re)create the annotated tag v<version>",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc := usecase.NewRelease(usecase.WithGitClient(p.gitClient(p.runner())))

			m, err := uc.ExtractVersion(ctx, p.project.ManifestPath())
			if err != nil {
				return err
			}

			paths := p.git.Paths
			if len(paths) == 0 {
				paths = []string{p.project.Manifest}
			}
			if err := uc.Tag(ctx, &usecase.TagInput{
				Version: m.Version,
				Paths:   paths,
				Remote:  p.git.Remote,
				Branch:  p.git.Branch,
				Message: message,
			}); err != nil {
				return err
			}

			_, err = fmt.Fprintln(c.Root().Writer, m.Version.TagName())
			return err
		},
	}
}
