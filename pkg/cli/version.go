package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdVersion() *cli.Command {
	var (
		p   pipeline
		tag bool
	)

	flags := append(p.project.Flags(),
		&cli.BoolFlag{
			Name:        "tag",
			Usage:       "Print the tag name instead of the version",
			Destination: &tag,
		},
	)

	return &cli.Command{
		Name:  "version",
		Usage: "Print the version declared in the manifest",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			m, err := usecase.NewRelease().ExtractVersion(ctx, p.project.ManifestPath())
			if err != nil {
				return err
			}

			out := m.Version.String()
			if tag {
				out = m.Version.TagName()
			}
			_, err = fmt.Fprintln(c.Root().Writer, out)
			return err
		},
	}
}
