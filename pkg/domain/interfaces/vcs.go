package interfaces

//go:generate moq -out mocks/vcs_mock.go -pkg mocks . GitClient CommandRunner

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// CommandRunner executes external processes
type CommandRunner interface {
	// Run executes cmd and returns its trimmed stdout
	Run(ctx context.Context, cmd *model.Command) (string, error)
}

// GitClient defines the version-control operations of the release pipeline
type GitClient interface {
	Add(ctx context.Context, paths ...string) error
	HasStagedChanges(ctx context.Context) (bool, error)
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, remote, branch string) error
	CurrentBranch(ctx context.Context) (string, error)
	RemoteURL(ctx context.Context, remote string) (string, error)

	CreateAnnotatedTag(ctx context.Context, tag, message string) error
	DeleteTag(ctx context.Context, tag string) error
	DeleteRemoteTag(ctx context.Context, remote, tag string) error
	PushTag(ctx context.Context, remote, tag string) error
}
