package interfaces

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// Builder produces distributable artifacts from a project directory
type Builder interface {
	Build(ctx context.Context, dir string) ([]*model.Artifact, error)
}

// IndexUploader pushes artifacts to a package index
type IndexUploader interface {
	Upload(ctx context.Context, manifest *model.Manifest, artifacts []*model.Artifact) error
}

// ArtifactStore mirrors artifacts to object storage
type ArtifactStore interface {
	// Put stores an artifact and returns its location
	Put(ctx context.Context, version model.Version, artifact *model.Artifact) (string, error)
}

// ReleaseRecorder persists a record of each publication
type ReleaseRecorder interface {
	Record(ctx context.Context, record *model.ReleaseRecord) error
}

// Notifier announces a finished publication
type Notifier interface {
	Notify(ctx context.Context, result *model.PublishResult) error
}
