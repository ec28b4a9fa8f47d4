package config

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/firestore"
	"github.com/urfave/cli/v3"
)

// Firestore holds release record configuration
type Firestore struct {
	ProjectID  string
	DatabaseID string
	Collection string
}

// Flags returns CLI flags for the release record
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project of the release record database, disabled when empty",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("SHIPWRIGHT_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("SHIPWRIGHT_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Collection holding release records",
			Value:       firestore.DefaultCollection,
			Destination: &c.Collection,
			Sources:     cli.EnvVars("SHIPWRIGHT_FIRESTORE_COLLECTION"),
		},
	}
}

// NewRecorder creates the release recorder, or nil when no project is set
func (c *Firestore) NewRecorder(ctx context.Context) (interfaces.ReleaseRecorder, error) {
	if c.ProjectID == "" {
		return nil, nil
	}
	return firestore.New(ctx, c.ProjectID, c.DatabaseID, c.Collection)
}
