package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/cli/config"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/git"
	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/m-mizutani/shipwright/pkg/utils/command"
	"github.com/urfave/cli/v3"
)

// pipeline gathers the configuration of every release collaborator. Each
// command exposes the flags of the parts it uses.
type pipeline struct {
	project   config.Project
	git       config.Git
	build     config.Build
	github    config.GitHub
	index     config.Index
	gcs       config.GCS
	firestore config.Firestore
	slack     config.Slack
}

// publishFlags are the flags of the release publisher and its best-effort steps
func (p *pipeline) publishFlags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, p.github.Flags()...)
	flags = append(flags, p.index.Flags()...)
	flags = append(flags, p.gcs.Flags()...)
	flags = append(flags, p.firestore.Flags()...)
	flags = append(flags, p.slack.Flags()...)
	return flags
}

func (p *pipeline) runner() *command.Runner {
	return command.New(
		command.WithSecrets(p.github.Token, p.index.Password),
		command.WithTimeout(p.build.Timeout),
	)
}

func (p *pipeline) gitClient(runner interfaces.CommandRunner) interfaces.GitClient {
	if p.git.Binary == "" {
		return git.NewClient(runner, p.project.Dir)
	}
	return p.git.NewClient(runner, p.project.Dir)
}

// publishOptions creates the GitHub client and every optional collaborator
// that is configured
func (p *pipeline) publishOptions(ctx context.Context) ([]usecase.ReleaseOption, error) {
	logger := ctxlog.From(ctx)
	logger.Debug("Publish configuration",
		"github", p.github,
		"index", p.index,
		"gcs", p.gcs,
		"firestore", p.firestore,
		"slack", p.slack,
	)

	githubClient, err := p.github.NewClient()
	if err != nil {
		return nil, err
	}
	opts := []usecase.ReleaseOption{usecase.WithGitHubClient(githubClient)}

	uploader, err := p.index.NewUploader()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure package index upload")
	}
	if uploader != nil {
		opts = append(opts, usecase.WithIndexUploader(uploader))
	}

	store, err := p.gcs.NewStore(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure artifact mirror")
	}
	if store != nil {
		opts = append(opts, usecase.WithArtifactStore(store))
	}

	recorder, err := p.firestore.NewRecorder(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure release record")
	}
	if recorder != nil {
		opts = append(opts, usecase.WithReleaseRecorder(recorder))
	}

	notifier, err := p.slack.NewNotifier()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure announcement")
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}

	return opts, nil
}
