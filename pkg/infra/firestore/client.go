package firestore

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"google.golang.org/api/option"
)

// DefaultCollection holds one document per published tag
const DefaultCollection = "releases"

type client struct {
	fs         *firestore.Client
	collection string
}

// New creates a release recorder backed by Firestore
func New(ctx context.Context, projectID, databaseID, collection string, opts ...option.ClientOption) (interfaces.ReleaseRecorder, error) {
	if projectID == "" {
		return nil, goerr.New("Firestore project ID is empty")
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	if collection == "" {
		collection = DefaultCollection
	}

	fs, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}

	return &client{fs: fs, collection: collection}, nil
}

// DocumentID returns the document key of a record. Re-publishing a tag
// overwrites the same document.
func DocumentID(record *model.ReleaseRecord) string {
	return strings.ReplaceAll(record.Repository, "/", "_") + "_" + record.TagName
}

// Record stores the release record
func (c *client) Record(ctx context.Context, record *model.ReleaseRecord) error {
	id := DocumentID(record)
	if _, err := c.fs.Collection(c.collection).Doc(id).Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to save release record",
			goerr.V("collection", c.collection), goerr.V("id", id))
	}
	return nil
}
