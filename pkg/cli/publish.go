package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/infra/builder"
	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdPublish() *cli.Command {
	var (
		p         pipeline
		tag       string
		draft     bool
		skipBuild bool
	)

	flags := append(p.project.Flags(), p.build.Flags()...)
	flags = append(flags, p.publishFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "tag",
			Usage:       "Pushed tag, must equal v<version>",
			Destination: &tag,
			Sources:     cli.EnvVars("SHIPWRIGHT_TAG", "GITHUB_REF_NAME"),
		},
		&cli.BoolFlag{
			Name:        "draft",
			Usage:       "Create the release as a draft",
			Destination: &draft,
			Sources:     cli.EnvVars("SHIPWRIGHT_DRAFT"),
		},
		&cli.BoolFlag{
			Name:        "skip-build",
			Usage:       "Publish the files already in the dist directory",
			Destination: &skipBuild,
		},
	)

	return &cli.Command{
		Name:  "publish",
		Usage: "Build and publish the release of a pushed tag",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			runner := p.runner()
			opts, err := p.publishOptions(ctx)
			if err != nil {
				return err
			}
			opts = append(opts,
				usecase.WithBuilder(p.build.NewBuilder(runner)),
				usecase.WithGitClient(p.gitClient(runner)),
			)
			uc := usecase.NewRelease(opts...)

			m, err := uc.ExtractVersion(ctx, p.project.ManifestPath())
			if err != nil {
				return err
			}
			repo, err := uc.ResolveRepository(ctx, p.github.Repository, "")
			if err != nil {
				return err
			}

			input := &usecase.PublishInput{
				Dir:           p.project.Dir,
				Manifest:      m,
				Repository:    repo,
				TagName:       tag,
				ChangelogPath: p.project.ChangelogPath(),
				Draft:         draft,
			}
			if skipBuild {
				artifacts, err := builder.Collect(builder.DistPath(p.project.Dir, p.build.DistDir))
				if err != nil {
					return err
				}
				if len(artifacts) == 0 {
					return goerr.Wrap(builder.ErrNoArtifacts, "nothing to publish", goerr.V("dist_dir", p.build.DistDir))
				}
				input.Artifacts = artifacts
			}

			result, err := uc.Publish(ctx, input)
			if err != nil {
				return err
			}

			printSummary(c.Root().Writer, result)
			return nil
		},
	}
}
