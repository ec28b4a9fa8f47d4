package config

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/gcs"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// GCS holds artifact mirror configuration
type GCS struct {
	Bucket          string
	Prefix          string
	CredentialsFile string
}

// Flags returns CLI flags for the artifact mirror
func (c *GCS) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket mirroring the artifacts, disabled when empty",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("SHIPWRIGHT_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix in the bucket",
			Destination: &c.Prefix,
			Sources:     cli.EnvVars("SHIPWRIGHT_GCS_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "gcs-credentials",
			Usage:       "Service account key file, application default credentials when empty",
			Destination: &c.CredentialsFile,
			Sources:     cli.EnvVars("SHIPWRIGHT_GCS_CREDENTIALS"),
		},
	}
}

// NewStore creates the artifact store, or nil when no bucket is set
func (c *GCS) NewStore(ctx context.Context) (interfaces.ArtifactStore, error) {
	if c.Bucket == "" {
		return nil, nil
	}

	var opts []option.ClientOption
	if c.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(c.CredentialsFile))
	}
	return gcs.New(ctx, c.Bucket, c.Prefix, opts...)
}
