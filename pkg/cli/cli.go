package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/shipwright/pkg/cli/config"
	"github.com/m-mizutani/shipwright/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

type app struct {
	*cli.Command
	loggerCfg config.Logger
	sentryCfg config.Sentry
	logger    *slog.Logger
}

func newApp() *app {
	a := &app{}

	flags := append(a.loggerCfg.Flags(), a.sentryCfg.Flags()...)

	a.Command = &cli.Command{
		Name:    types.AppName,
		Usage:   "Release automation for Python packages: version, tag, build and publish",
		Version: types.Version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := a.loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			if err := a.sentryCfg.Configure(); err != nil {
				return nil, err
			}

			a.logger = logger
			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdVersion(),
			cmdBump(),
			cmdTag(),
			cmdBuild(),
			cmdPublish(),
			cmdRelease(),
			cmdWorkflow(),
			cmdServe(),
		},
	}

	return a
}

// Run runs the CLI application. SIGINT and SIGTERM cancel the running
// command, including its subprocesses and HTTP calls.
func Run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	if err := a.Run(ctx, args); err != nil {
		logger := a.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))

		if a.sentryCfg.Enabled() {
			sentry.CaptureException(err)
			sentry.Flush(2 * time.Second)
		}
		return err
	}

	return nil
}
