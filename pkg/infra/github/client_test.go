package github_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	githubinfra "github.com/m-mizutani/shipwright/pkg/infra/github"
)

var testRepo = model.Repository{Owner: "octo", Name: "ghost"}

func newTestClient(t *testing.T, handler http.Handler) interfaces.GitHubClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := githubinfra.NewTokenClient("test-token",
		githubinfra.WithBaseURL(server.URL),
		githubinfra.WithBackoff(func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
		}),
	)
	gt.NoError(t, err)
	return client
}

func TestNewTokenClient_EmptyToken(t *testing.T) {
	_, err := githubinfra.NewTokenClient("")
	gt.Error(t, err)
}

func TestClient_GetReleaseByTag(t *testing.T) {
	ctx := context.Background()
	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/ghost/releases", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer test-token")
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", `<`+serverURL+`/repos/octo/ghost/releases?page=2>; rel="next"`)
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": 41, "tag_name": "v1.0", "name": "v1.0"},
			})
		case "2":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{
					"id":       42,
					"tag_name": "v1.1",
					"name":     "v1.1",
					"draft":    true,
					"html_url": "https://github.com/octo/ghost/releases/tag/v1.1",
					"assets":   []map[string]any{{"name": "ghost-1.1.tar.gz"}},
				},
			})
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	serverURL = server.URL

	client, err := githubinfra.NewTokenClient("test-token", githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)

	t.Run("draft on a later page", func(t *testing.T) {
		rel, err := client.GetReleaseByTag(ctx, testRepo, "v1.1")
		gt.NoError(t, err)
		gt.Value(t, rel.ID).Equal(int64(42))
		gt.True(t, rel.Draft)
		gt.Value(t, rel.Assets).Equal([]string{"ghost-1.1.tar.gz"})
	})

	t.Run("first page", func(t *testing.T) {
		rel, err := client.GetReleaseByTag(ctx, testRepo, "v1.0")
		gt.NoError(t, err)
		gt.Value(t, rel.ID).Equal(int64(41))
		gt.False(t, rel.Draft)
	})

	t.Run("missing tag", func(t *testing.T) {
		rel, err := client.GetReleaseByTag(ctx, testRepo, "v9.9")
		gt.NoError(t, err)
		gt.Value(t, rel).Nil()
	})
}

func TestClient_CreateAndDeleteRelease(t *testing.T) {
	ctx := context.Background()
	var deleted atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/ghost/releases", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gt.Value(t, body["tag_name"]).Equal("v1.1")
		gt.Value(t, body["name"]).Equal("v1.1")
		gt.Value(t, body["generate_release_notes"]).Equal(true)
		gt.Value(t, body["body"]).Equal("changes")

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "tag_name": "v1.1", "html_url": "https://example.com/r/7"})
	})
	mux.HandleFunc("DELETE /repos/octo/ghost/releases/7", func(w http.ResponseWriter, r *http.Request) {
		deleted.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, mux)

	rel, err := client.CreateRelease(ctx, &model.ReleaseRequest{
		Repository:    testRepo,
		TagName:       "v1.1",
		Name:          "v1.1",
		Body:          "changes",
		GenerateNotes: true,
	})
	gt.NoError(t, err)
	gt.Value(t, rel.ID).Equal(int64(7))
	gt.Value(t, rel.HTMLURL).Equal("https://example.com/r/7")

	gt.NoError(t, client.DeleteRelease(ctx, testRepo, 7))
	gt.Value(t, deleted.Load()).Equal(true)
}

func writeArtifact(t *testing.T) *model.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ghost-1.1.tar.gz")
	gt.NoError(t, os.WriteFile(path, []byte("payload"), 0644))
	return &model.Artifact{Path: path, Name: "ghost-1.1.tar.gz", Kind: model.ArtifactSdist, Size: 7}
}

func TestClient_UploadReleaseAsset_RetriesServerErrors(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/ghost/releases/7/assets", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Query().Get("name")).Equal("ghost-1.1.tar.gz")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		body, err := io.ReadAll(r.Body)
		gt.NoError(t, err)
		gt.Value(t, string(body)).Equal("payload")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"name":"ghost-1.1.tar.gz"}`))
	})
	client := newTestClient(t, mux)

	gt.NoError(t, client.UploadReleaseAsset(ctx, testRepo, 7, writeArtifact(t)))
	gt.Value(t, calls.Load()).Equal(int32(2))
}

func TestClient_UploadReleaseAsset_ClientErrorIsPermanent(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/ghost/releases/7/assets", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Validation Failed"}`))
	})
	client := newTestClient(t, mux)

	err := client.UploadReleaseAsset(ctx, testRepo, 7, writeArtifact(t))
	gt.Error(t, err)
	gt.Value(t, calls.Load()).Equal(int32(1))
}

func TestClient_UploadReleaseAsset_Enterprise(t *testing.T) {
	ctx := context.Background()
	var uploads atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/uploads/repos/octo/ghost/releases/7/assets", func(w http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"name":"ghost-1.1.tar.gz"}`))
	})
	mux.HandleFunc("POST /api/v3/repos/octo/ghost/releases/7/assets", func(w http.ResponseWriter, r *http.Request) {
		t.Error("asset uploaded to the API endpoint")
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	for _, apiURL := range []string{server.URL + "/api/v3/", server.URL + "/api/v3", server.URL} {
		t.Run(apiURL, func(t *testing.T) {
			client, err := githubinfra.NewTokenClient("test-token",
				githubinfra.WithEnterpriseURLs(apiURL, ""),
			)
			gt.NoError(t, err)
			gt.NoError(t, client.UploadReleaseAsset(ctx, testRepo, 7, writeArtifact(t)))
		})
	}
	gt.Value(t, uploads.Load()).Equal(int32(3))
}

func TestClient_AppAuthentication(t *testing.T) {
	// This test requires GitHub App credentials from environment variables
	appID := os.Getenv("TEST_GITHUB_APP_ID")
	installationID := os.Getenv("TEST_GITHUB_INSTALLATION_ID")
	privateKey := os.Getenv("TEST_GITHUB_PRIVATE_KEY")

	if appID == "" || installationID == "" || privateKey == "" {
		t.Skip("Test GitHub App credentials not provided via environment variables")
	}

	appIDInt, err := strconv.ParseInt(appID, 10, 64)
	gt.NoError(t, err)

	installationIDInt, err := strconv.ParseInt(installationID, 10, 64)
	gt.NoError(t, err)

	t.Run("load private key from content", func(t *testing.T) {
		client, err := githubinfra.NewClient(appIDInt, installationIDInt, []byte(privateKey))
		gt.NoError(t, err)
		gt.Value(t, client).NotNil()
	})

	t.Run("load private key from content string", func(t *testing.T) {
		client, err := githubinfra.NewClientFromConfig(appIDInt, installationIDInt, privateKey)
		gt.NoError(t, err)
		gt.Value(t, client).NotNil()
	})
}
