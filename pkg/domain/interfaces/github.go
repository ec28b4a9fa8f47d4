package interfaces

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// DownloadZipball downloads the source code zipball for a specific ref
	DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error)

	// GetReleaseByTag returns the release bound to tag, drafts included, or
	// nil if none exists
	GetReleaseByTag(ctx context.Context, repo model.Repository, tag string) (*model.Release, error)

	// DeleteRelease deletes a release by ID. The tag itself is kept.
	DeleteRelease(ctx context.Context, repo model.Repository, id int64) error

	// CreateRelease creates a release bound to an existing tag
	CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error)

	// UploadReleaseAsset attaches a file to a release
	UploadReleaseAsset(ctx context.Context, repo model.Repository, releaseID int64, artifact *model.Artifact) error
}
