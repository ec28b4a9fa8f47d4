package cli

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdRelease() *cli.Command {
	var (
		p     pipeline
		draft bool
	)

	flags := append(p.project.Flags(), p.git.Flags()...)
	flags = append(flags, p.build.Flags()...)
	flags = append(flags, p.publishFlags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "draft",
		Usage:       "Create the release as a draft",
		Destination: &draft,
		Sources:     cli.EnvVars("SHIPWRIGHT_DRAFT"),
	})

	return &cli.Command{
		Name:  "release",
		Usage: "Tag, build and publish the manifest version in one go",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			runner := p.runner()
			opts, err := p.publishOptions(ctx)
			if err != nil {
				return err
			}
			opts = append(opts,
				usecase.WithGitClient(p.gitClient(runner)),
				usecase.WithBuilder(p.build.NewBuilder(runner)),
			)

			// staged paths are relative to the project root, where git runs
			paths := p.git.Paths
			if len(paths) == 0 {
				paths = []string{p.project.Manifest}
			}

			result, err := usecase.NewRelease(opts...).Run(ctx, &usecase.RunInput{
				Dir:           p.project.Dir,
				ManifestPath:  p.project.ManifestPath(),
				Repository:    p.github.Repository,
				Paths:         paths,
				Remote:        p.git.Remote,
				Branch:        p.git.Branch,
				ChangelogPath: p.project.ChangelogPath(),
				Draft:         draft,
			})
			if err != nil {
				return err
			}

			printSummary(c.Root().Writer, result)
			return nil
		},
	}
}
