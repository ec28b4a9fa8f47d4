package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdBump() *cli.Command {
	var p pipeline

	return &cli.Command{
		Name:      "bump",
		Usage:     "Rewrite the manifest version",
		ArgsUsage: "<major|minor|patch|VERSION>",
		Flags:     p.project.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("bump takes exactly one argument: major, minor, patch or a version")
			}

			in := &usecase.BumpInput{ManifestPath: p.project.ManifestPath()}
			switch arg := c.Args().First(); model.BumpPart(arg) {
			case model.BumpMajor, model.BumpMinor, model.BumpPatch:
				in.Part = model.BumpPart(arg)
			default:
				in.Version = model.Version(arg)
			}

			old, next, err := usecase.NewRelease().Bump(ctx, in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.Root().Writer, "%s -> %s\n", old, next)
			return err
		},
	}
}
