package pypi

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

const (
	// DefaultRepositoryURL is the PyPI legacy upload endpoint
	DefaultRepositoryURL = "https://upload.pypi.org/legacy/"
	// TestRepositoryURL is the TestPyPI legacy upload endpoint
	TestRepositoryURL = "https://test.pypi.org/legacy/"
	// TokenUsername is the user name to send with an API token
	TokenUsername = "__token__"
)

type client struct {
	url          string
	username     string
	password     string
	skipExisting bool
	httpClient   *http.Client
	newBackoff   func() backoff.BackOff
}

// Option configures the uploader
type Option func(*client)

// WithRepositoryURL sets the legacy upload endpoint
func WithRepositoryURL(url string) Option {
	return func(c *client) {
		c.url = url
	}
}

// WithUsername sets the basic auth user. Defaults to __token__.
func WithUsername(username string) Option {
	return func(c *client) {
		if username != "" {
			c.username = username
		}
	}
}

// WithSkipExisting treats "file already exists" rejections as success
func WithSkipExisting(skip bool) Option {
	return func(c *client) {
		c.skipExisting = skip
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBackoff sets the retry policy for transient failures
func WithBackoff(factory func() backoff.BackOff) Option {
	return func(c *client) {
		c.newBackoff = factory
	}
}

// New creates an index uploader authenticated with password (an API token
// when the user name is __token__).
func New(password string, opts ...Option) (interfaces.IndexUploader, error) {
	if password == "" {
		return nil, goerr.New("package index credential is empty")
	}

	c := &client{
		url:        DefaultRepositoryURL,
		username:   TokenUsername,
		password:   password,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		newBackoff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Upload sends every artifact to the index, stopping at the first failure
func (c *client) Upload(ctx context.Context, manifest *model.Manifest, artifacts []*model.Artifact) error {
	logger := ctxlog.From(ctx)

	for _, a := range artifacts {
		skipped, err := c.uploadOne(ctx, manifest, a)
		if err != nil {
			return goerr.Wrap(err, "failed to upload to package index",
				goerr.V("url", c.url),
				goerr.V("name", a.Name),
			)
		}
		if skipped {
			logger.Warn("Artifact already exists on package index, skipped", "name", a.Name)
			continue
		}
		logger.Info("Uploaded artifact to package index", "name", a.Name, "url", c.url)
	}
	return nil
}

func (c *client) uploadOne(ctx context.Context, manifest *model.Manifest, a *model.Artifact) (bool, error) {
	var skipped bool

	op := func() error {
		body, contentType, err := c.encode(manifest, a)
		if err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
		if err != nil {
			return backoff.Permanent(goerr.Wrap(err, "failed to create upload request"))
		}
		req.Header.Set("Content-Type", contentType)
		req.SetBasicAuth(c.username, c.password)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return goerr.Wrap(err, "upload request failed")
		}
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case c.skipExisting && isAlreadyExists(resp.StatusCode, string(msg)):
			skipped = true
			return nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return goerr.New("package index is unavailable",
				goerr.V("status", resp.StatusCode), goerr.V("body", strings.TrimSpace(string(msg))))
		default:
			return backoff.Permanent(goerr.New("package index rejected upload",
				goerr.V("status", resp.StatusCode), goerr.V("body", strings.TrimSpace(string(msg)))))
		}
	}

	if err := backoff.Retry(op, backoff.WithContext(c.newBackoff(), ctx)); err != nil {
		return false, err
	}
	return skipped, nil
}

func isAlreadyExists(status int, body string) bool {
	if status != http.StatusBadRequest && status != http.StatusConflict && status != http.StatusForbidden {
		return false
	}
	body = strings.ToLower(body)
	return strings.Contains(body, "already exists") || strings.Contains(body, "file already exists")
}

// encode builds the multipart form of the legacy upload API
func (c *client) encode(manifest *model.Manifest, a *model.Artifact) (io.Reader, string, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to read artifact", goerr.V("path", a.Path))
	}
	md5sum := md5.Sum(data)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{":action", "file_upload"},
		{"protocol_version", "1"},
		{"metadata_version", "2.1"},
		{"name", manifest.Name},
		{"version", manifest.Version.String()},
		{"filetype", string(a.Kind)},
		{"pyversion", a.PythonTag()},
		{"sha256_digest", a.SHA256},
		{"md5_digest", hex.EncodeToString(md5sum[:])},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", goerr.Wrap(err, "failed to write form field", goerr.V("field", f[0]))
		}
	}

	part, err := w.CreateFormFile("content", a.Name)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to create form file")
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", goerr.Wrap(err, "failed to write form file")
	}
	if err := w.Close(); err != nil {
		return nil, "", goerr.Wrap(err, "failed to close multipart writer")
	}

	return &buf, w.FormDataContentType(), nil
}
