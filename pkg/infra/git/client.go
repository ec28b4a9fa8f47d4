package git

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/utils/command"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD points at a commit
// instead of a branch, as in CI tag checkouts
var ErrDetachedHead = errors.New("HEAD is detached")

type client struct {
	runner interfaces.CommandRunner
	dir    string
	binary string
}

// Option configures the git client
type Option func(*client)

// WithBinary overrides the git executable
func WithBinary(path string) Option {
	return func(c *client) {
		c.binary = path
	}
}

// NewClient creates a git client operating on the work tree at dir
func NewClient(runner interfaces.CommandRunner, dir string, opts ...Option) interfaces.GitClient {
	c := &client{
		runner: runner,
		dir:    dir,
		binary: "git",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) git(ctx context.Context, args ...string) (string, error) {
	return c.runner.Run(ctx, &model.Command{
		Dir:  c.dir,
		Name: c.binary,
		Args: args,
	})
}

// Add stages paths
func (c *client) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if _, err := c.git(ctx, append([]string{"add", "--"}, paths...)...); err != nil {
		return goerr.Wrap(err, "failed to stage files", goerr.V("paths", paths))
	}
	return nil
}

// HasStagedChanges reports whether the index differs from HEAD
func (c *client) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := c.git(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	if command.ExitCode(err) == 1 {
		return true, nil
	}
	return false, goerr.Wrap(err, "failed to inspect staged changes")
}

// Commit records the staged changes
func (c *client) Commit(ctx context.Context, message string) error {
	if _, err := c.git(ctx, "commit", "-m", message); err != nil {
		return goerr.Wrap(err, "failed to commit", goerr.V("message", message))
	}
	return nil
}

// Push pushes the commit at HEAD to branch on remote, so a detached
// checkout can be released to a named branch
func (c *client) Push(ctx context.Context, remote, branch string) error {
	if _, err := c.git(ctx, "push", remote, "HEAD:refs/heads/"+branch); err != nil {
		return goerr.Wrap(err, "failed to push branch", goerr.V("remote", remote), goerr.V("branch", branch))
	}
	return nil
}

// CurrentBranch returns the checked out branch name
func (c *client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve current branch")
	}
	if out == "HEAD" {
		return "", goerr.Wrap(ErrDetachedHead, "no branch is checked out", goerr.V("dir", c.dir))
	}
	return out, nil
}

// RemoteURL returns the fetch URL of remote
func (c *client) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := c.git(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get remote URL", goerr.V("remote", remote))
	}
	return out, nil
}

// CreateAnnotatedTag creates an annotated tag at HEAD
func (c *client) CreateAnnotatedTag(ctx context.Context, tag, message string) error {
	if _, err := c.git(ctx, "tag", "-a", tag, "-m", message); err != nil {
		return goerr.Wrap(err, "failed to create tag", goerr.V("tag", tag))
	}
	return nil
}

// DeleteTag deletes a local tag
func (c *client) DeleteTag(ctx context.Context, tag string) error {
	if _, err := c.git(ctx, "tag", "-d", tag); err != nil {
		return goerr.Wrap(err, "failed to delete tag", goerr.V("tag", tag))
	}
	return nil
}

// DeleteRemoteTag deletes a tag on remote
func (c *client) DeleteRemoteTag(ctx context.Context, remote, tag string) error {
	if _, err := c.git(ctx, "push", remote, "--delete", "refs/tags/"+tag); err != nil {
		return goerr.Wrap(err, "failed to delete remote tag", goerr.V("remote", remote), goerr.V("tag", tag))
	}
	return nil
}

// PushTag pushes a single tag to remote
func (c *client) PushTag(ctx context.Context, remote, tag string) error {
	if _, err := c.git(ctx, "push", remote, "refs/tags/"+tag); err != nil {
		return goerr.Wrap(err, "failed to push tag", goerr.V("remote", remote), goerr.V("tag", tag))
	}
	return nil
}
