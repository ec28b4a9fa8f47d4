package github

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

type client struct {
	githubClient *github.Client
	newBackoff   func() backoff.BackOff
}

// Option configures the GitHub client
type Option func(*client) error

// WithBaseURL points both the API and upload endpoints at baseURL. Used for
// test servers; GitHub Enterprise needs WithEnterpriseURLs.
func WithBaseURL(baseURL string) Option {
	return func(c *client) error {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return goerr.Wrap(err, "invalid GitHub base URL", goerr.V("url", baseURL))
		}
		c.githubClient.BaseURL = u
		c.githubClient.UploadURL = u
		return nil
	}
}

// WithEnterpriseURLs points the client at a GitHub Enterprise Server. The
// API is served from <root>/api/v3/ and uploads from <root>/api/uploads/. An
// empty uploadURL is derived from apiURL.
func WithEnterpriseURLs(apiURL, uploadURL string) Option {
	return func(c *client) error {
		if uploadURL == "" {
			uploadURL = enterpriseRoot(apiURL)
		}
		gc, err := c.githubClient.WithEnterpriseURLs(enterpriseRoot(apiURL), uploadURL)
		if err != nil {
			return goerr.Wrap(err, "invalid GitHub Enterprise URL",
				goerr.V("api_url", apiURL), goerr.V("upload_url", uploadURL))
		}
		c.githubClient = gc
		return nil
	}
}

// enterpriseRoot strips the /api/v3 suffix so go-github can append the API
// and upload paths itself
func enterpriseRoot(apiURL string) string {
	root := strings.TrimSuffix(apiURL, "/")
	root = strings.TrimSuffix(root, "/api/v3")
	return root + "/"
}

// WithBackoff sets the retry policy for asset uploads
func WithBackoff(factory func() backoff.BackOff) Option {
	return func(c *client) error {
		c.newBackoff = factory
		return nil
	}
}

func defaultBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxElapsedTime = 2 * time.Minute
	return backoff.WithMaxRetries(b, 4)
}

func newClient(githubClient *github.Client, opts []Option) (*client, error) {
	c := &client{
		githubClient: githubClient,
		newBackoff:   defaultBackoff,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewClient creates a new GitHub client with App authentication
func NewClient(appID, installationID int64, privateKey []byte, opts ...Option) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
		)
	}

	c, err := newClient(github.NewClient(&http.Client{Transport: itr}), opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewClientFromConfig creates an App authenticated client from a private key
// given either as PEM content or as a path to a PEM file.
func NewClientFromConfig(appID, installationID int64, privateKey string, opts ...Option) (interfaces.GitHubClient, error) {
	key := []byte(privateKey)
	if !strings.Contains(privateKey, "-----BEGIN") {
		data, err := os.ReadFile(privateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key file")
		}
		key = data
	}
	return NewClient(appID, installationID, key, opts...)
}

// NewTokenClient creates a GitHub client authenticated with a personal
// access token or the workflow GITHUB_TOKEN.
func NewTokenClient(token string, opts ...Option) (interfaces.GitHubClient, error) {
	if token == "" {
		return nil, goerr.New("GitHub token is empty")
	}

	c, err := newClient(github.NewClient(nil).WithAuthToken(token), opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode == http.StatusNotFound
	}
	return false
}

func toRelease(r *github.RepositoryRelease) *model.Release {
	rel := &model.Release{
		ID:      r.GetID(),
		TagName: r.GetTagName(),
		Name:    r.GetName(),
		HTMLURL: r.GetHTMLURL(),
		Draft:   r.GetDraft(),
	}
	for _, a := range r.Assets {
		rel.Assets = append(rel.Assets, a.GetName())
	}
	return rel
}

// GetReleaseByTag returns the release bound to tag, or nil if none exists.
// The tag endpoint hides drafts, so releases are listed instead.
func (c *client) GetReleaseByTag(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
	opt := &github.ListOptions{PerPage: 100}
	for {
		releases, resp, err := c.githubClient.Repositories.ListReleases(ctx, repo.Owner, repo.Name, opt)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, goerr.Wrap(err, "failed to list releases",
				goerr.V("repository", repo.FullName()),
				goerr.V("tag", tag),
				goerr.V("page", opt.Page),
			)
		}
		for _, r := range releases {
			if r.GetTagName() == tag {
				return toRelease(r), nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return nil, nil
		}
		opt.Page = resp.NextPage
	}
}

// DeleteRelease deletes a release by ID
func (c *client) DeleteRelease(ctx context.Context, repo model.Repository, id int64) error {
	if _, err := c.githubClient.Repositories.DeleteRelease(ctx, repo.Owner, repo.Name, id); err != nil {
		if isNotFound(err) {
			return nil
		}
		return goerr.Wrap(err, "failed to delete release",
			goerr.V("repository", repo.FullName()),
			goerr.V("release_id", id),
		)
	}
	return nil
}

// CreateRelease creates a release bound to an existing tag
func (c *client) CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error) {
	release := &github.RepositoryRelease{
		TagName:              github.Ptr(req.TagName),
		Name:                 github.Ptr(req.Name),
		Draft:                github.Ptr(req.Draft),
		Prerelease:           github.Ptr(req.Prerelease),
		GenerateReleaseNotes: github.Ptr(req.GenerateNotes),
	}
	if req.Body != "" {
		release.Body = github.Ptr(req.Body)
	}

	r, _, err := c.githubClient.Repositories.CreateRelease(ctx, req.Repository.Owner, req.Repository.Name, release)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release",
			goerr.V("repository", req.Repository.FullName()),
			goerr.V("tag", req.TagName),
		)
	}
	return toRelease(r), nil
}

// UploadReleaseAsset attaches a file to a release, retrying transient failures
func (c *client) UploadReleaseAsset(ctx context.Context, repo model.Repository, releaseID int64, artifact *model.Artifact) error {
	logger := ctxlog.From(ctx)

	op := func() error {
		f, err := os.Open(artifact.Path)
		if err != nil {
			return backoff.Permanent(goerr.Wrap(err, "failed to open artifact", goerr.V("path", artifact.Path)))
		}
		defer f.Close()

		_, resp, err := c.githubClient.Repositories.UploadReleaseAsset(ctx, repo.Owner, repo.Name, releaseID,
			&github.UploadOptions{Name: artifact.Name}, f)
		if err != nil {
			// 4xx except rate limiting will not improve on retry
			if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			logger.Warn("Asset upload failed, retrying", "name", artifact.Name, "error", err)
			return err
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(c.newBackoff(), ctx)); err != nil {
		return goerr.Wrap(err, "failed to upload release asset",
			goerr.V("repository", repo.FullName()),
			goerr.V("release_id", releaseID),
			goerr.V("name", artifact.Name),
		)
	}
	return nil
}

// DownloadZipball downloads the source code zipball for a specific ref
func (c *client) DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	// Get download URL for zipball
	link, _, err := c.githubClient.Repositories.GetArchiveLink(ctx, owner, repo, github.Zipball, &github.RepositoryContentGetOptions{
		Ref: ref,
	}, 3) // Follow up to 3 redirects
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get zipball download URL",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("ref", ref))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request", goerr.V("url", link.String()))
	}

	// Use the same client transport for authentication
	httpClient := &http.Client{Transport: c.githubClient.Client().Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download zipball", goerr.V("url", link.String()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status code",
			goerr.V("status", resp.StatusCode), goerr.V("url", link.String()))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body")
	}

	return data, nil
}
