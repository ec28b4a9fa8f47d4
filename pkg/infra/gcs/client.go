package gcs

import (
	"context"
	"io"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"google.golang.org/api/option"
)

type client struct {
	storage *storage.Client
	bucket  string
	prefix  string
}

// New creates an artifact store writing to gs://bucket/prefix
func New(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (interfaces.ArtifactStore, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is empty")
	}

	sc, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	return &client{
		storage: sc,
		bucket:  bucket,
		prefix:  prefix,
	}, nil
}

// ObjectName returns the object key of an artifact
func ObjectName(prefix string, version model.Version, artifact *model.Artifact) string {
	return path.Join(prefix, version.String(), artifact.Name)
}

// Put uploads the artifact and returns its gs:// location
func (c *client) Put(ctx context.Context, version model.Version, artifact *model.Artifact) (string, error) {
	name := ObjectName(c.prefix, version, artifact)

	f, err := os.Open(artifact.Path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open artifact", goerr.V("path", artifact.Path))
	}
	defer f.Close()

	// cancelling the writer context before Close discards a partial object
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := c.storage.Bucket(c.bucket).Object(name).NewWriter(wctx)
	w.ContentType = "application/octet-stream"
	w.Metadata = map[string]string{
		"sha256":  artifact.SHA256,
		"version": version.String(),
	}

	if _, err := io.Copy(w, f); err != nil {
		cancel()
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write object", goerr.V("bucket", c.bucket), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", c.bucket), goerr.V("object", name))
	}

	return "gs://" + c.bucket + "/" + name, nil
}
