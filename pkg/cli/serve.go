package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/cli/config"
	githubcontroller "github.com/m-mizutani/shipwright/pkg/controller/github"
	controller "github.com/m-mizutani/shipwright/pkg/controller/http"
	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/m-mizutani/shipwright/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		p         pipeline
	)

	flags := append(serverCfg.Flags(), p.build.Flags()...)
	flags = append(flags, p.publishFlags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook server publishing releases on tag pushes",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting shipwright server",
				slog.String("addr", serverCfg.Addr),
			)
			logger.Debug("Server configuration", "server", serverCfg)

			opts, err := p.publishOptions(ctx)
			if err != nil {
				return err
			}
			opts = append(opts, usecase.WithBuilder(p.build.NewBuilder(p.runner())))

			releaseUC := usecase.NewRelease(opts...)
			processor := githubcontroller.NewEventProcessor(releaseUC)
			webhookUC := usecase.NewWebhook(processor)

			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(serverCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				logger.Info("Shutting down...", slog.Any("cause", context.Cause(ctx)))
			case err := <-errCh:
				if err != nil {
					return goerr.Wrap(err, "HTTP server stopped")
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			// let running publications finish
			if err := async.Wait(shutdownCtx); err != nil {
				logger.Warn("Publications still running at shutdown", slog.Any("error", err))
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
