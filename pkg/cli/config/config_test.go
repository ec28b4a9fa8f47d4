package config_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shipwright/pkg/cli/config"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

func TestProject_Paths(t *testing.T) {
	p := &config.Project{Dir: "work", Manifest: "pyproject.toml", Changelog: "CHANGELOG.md"}
	gt.Equal(t, p.ManifestPath(), filepath.Join("work", "pyproject.toml"))
	gt.Equal(t, p.ChangelogPath(), filepath.Join("work", "CHANGELOG.md"))

	abs := filepath.Join(t.TempDir(), "pyproject.toml")
	p.Manifest = abs
	gt.Equal(t, p.ManifestPath(), abs)

	p.Changelog = ""
	gt.Equal(t, p.ChangelogPath(), "")
}

func TestGitHub_NewClient(t *testing.T) {
	t.Run("token", func(t *testing.T) {
		c := &config.GitHub{Token: "ghp_test"}
		gt.False(t, c.IsApp())
		client, err := c.NewClient()
		gt.NoError(t, err)
		gt.NotNil(t, client)
	})

	t.Run("no credentials", func(t *testing.T) {
		_, err := (&config.GitHub{}).NewClient()
		gt.Error(t, err)
	})

	t.Run("enterprise uploads", func(t *testing.T) {
		var uploadPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uploadPath = r.URL.Path
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":1}`))
		}))
		t.Cleanup(server.Close)

		path := filepath.Join(t.TempDir(), "ghost-1.0.0.tar.gz")
		gt.NoError(t, os.WriteFile(path, []byte("payload"), 0644))

		c := &config.GitHub{Token: "ghp_test", APIURL: server.URL + "/api/v3/"}
		client, err := c.NewClient()
		gt.NoError(t, err)
		gt.NoError(t, client.UploadReleaseAsset(context.Background(),
			model.Repository{Owner: "octo", Name: "ghost"}, 7,
			&model.Artifact{Path: path, Name: "ghost-1.0.0.tar.gz"}))
		gt.Equal(t, uploadPath, "/api/uploads/repos/octo/ghost/releases/7/assets")
	})

	t.Run("app credentials take precedence", func(t *testing.T) {
		c := &config.GitHub{
			Token:          "ghp_test",
			AppID:          1,
			InstallationID: 2,
			PrivateKey:     filepath.Join(t.TempDir(), "missing.pem"),
		}
		gt.True(t, c.IsApp())
		// the key file does not exist, proving the App path was taken
		_, err := c.NewClient()
		gt.Error(t, err)
	})
}

func TestOptionalClients_Disabled(t *testing.T) {
	ctx := context.Background()

	uploader, err := (&config.Index{}).NewUploader()
	gt.NoError(t, err)
	gt.Nil(t, uploader)

	store, err := (&config.GCS{}).NewStore(ctx)
	gt.NoError(t, err)
	gt.Nil(t, store)

	recorder, err := (&config.Firestore{}).NewRecorder(ctx)
	gt.NoError(t, err)
	gt.Nil(t, recorder)

	notifier, err := (&config.Slack{}).NewNotifier()
	gt.NoError(t, err)
	gt.Nil(t, notifier)

	gt.False(t, (&config.Sentry{}).Enabled())
	gt.NoError(t, (&config.Sentry{}).Configure())
}

func TestOptionalClients_Enabled(t *testing.T) {
	uploader, err := (&config.Index{
		URL:      "https://test.pypi.org/legacy/",
		Username: "__token__",
		Password: "pypi-test",
	}).NewUploader()
	gt.NoError(t, err)
	gt.NotNil(t, uploader)

	notifier, err := (&config.Slack{WebhookURL: "https://hooks.slack.com/services/T/B/X", Channel: "#release"}).NewNotifier()
	gt.NoError(t, err)
	gt.NotNil(t, notifier)
}
