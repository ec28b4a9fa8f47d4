package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdBuild() *cli.Command {
	var p pipeline

	flags := append(p.project.Flags(), p.build.Flags()...)

	return &cli.Command{
		Name:  "build",
		Usage: "Build the distributions of the project",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc := usecase.NewRelease(usecase.WithBuilder(p.build.NewBuilder(p.runner())))

			artifacts, err := uc.Build(ctx, p.project.Dir)
			if err != nil {
				return err
			}

			for _, a := range artifacts {
				if _, err := fmt.Fprintln(c.Root().Writer, a.Path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
