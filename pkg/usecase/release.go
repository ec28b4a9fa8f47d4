package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/infra/pyproject"
	"github.com/m-mizutani/shipwright/pkg/utils/changelog"
)

var (
	// ErrTagMismatch is returned when the tag being published does not match the manifest version
	ErrTagMismatch = errors.New("tag does not match manifest version")
	// ErrNotConfigured is returned when an operation needs a collaborator that was not provided
	ErrNotConfigured = errors.New("required client is not configured")
)

// DefaultRemote is the push target of branches and tags
const DefaultRemote = "origin"

// Release runs the release pipeline: version extraction, tag lifecycle,
// package build and release publication.
type Release struct {
	git      interfaces.GitClient
	builder  interfaces.Builder
	github   interfaces.GitHubClient
	index    interfaces.IndexUploader
	store    interfaces.ArtifactStore
	recorder interfaces.ReleaseRecorder
	notifier interfaces.Notifier
	now      func() time.Time

	extractLimit int64
}

// ReleaseOption configures Release
type ReleaseOption func(*Release)

// WithGitClient sets the version-control client
func WithGitClient(c interfaces.GitClient) ReleaseOption {
	return func(r *Release) { r.git = c }
}

// WithBuilder sets the package builder
func WithBuilder(b interfaces.Builder) ReleaseOption {
	return func(r *Release) { r.builder = b }
}

// WithGitHubClient sets the release host client
func WithGitHubClient(c interfaces.GitHubClient) ReleaseOption {
	return func(r *Release) { r.github = c }
}

// WithIndexUploader enables the best-effort package index upload
func WithIndexUploader(u interfaces.IndexUploader) ReleaseOption {
	return func(r *Release) { r.index = u }
}

// WithArtifactStore enables the best-effort artifact mirror
func WithArtifactStore(s interfaces.ArtifactStore) ReleaseOption {
	return func(r *Release) { r.store = s }
}

// WithReleaseRecorder enables the best-effort release record
func WithReleaseRecorder(rec interfaces.ReleaseRecorder) ReleaseOption {
	return func(r *Release) { r.recorder = rec }
}

// WithNotifier enables the best-effort announcement
func WithNotifier(n interfaces.Notifier) ReleaseOption {
	return func(r *Release) { r.notifier = n }
}

// WithExtractLimit bounds the uncompressed size of downloaded source archives
func WithExtractLimit(n int64) ReleaseOption {
	return func(r *Release) { r.extractLimit = n }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) ReleaseOption {
	return func(r *Release) { r.now = now }
}

// NewRelease creates a new instance of Release
func NewRelease(opts ...ReleaseOption) *Release {
	r := &Release{now: time.Now, extractLimit: DefaultExtractLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExtractVersion reads and validates the manifest version
func (uc *Release) ExtractVersion(ctx context.Context, manifestPath string) (*model.Manifest, error) {
	m, err := pyproject.Load(manifestPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract version")
	}

	ctxlog.From(ctx).Info("Extracted version",
		"manifest", manifestPath,
		"name", m.Name,
		"version", m.Version,
		"tag", m.Version.TagName(),
	)
	return m, nil
}

// BumpInput selects the new manifest version. Version wins over Part.
type BumpInput struct {
	ManifestPath string
	Part         model.BumpPart
	Version      model.Version
}

// Bump rewrites the manifest version and returns the previous and new values
func (uc *Release) Bump(ctx context.Context, in *BumpInput) (model.Version, model.Version, error) {
	current, err := uc.ExtractVersion(ctx, in.ManifestPath)
	if err != nil {
		return "", "", err
	}

	next := in.Version
	if next == "" {
		if next, err = current.Version.Bump(in.Part); err != nil {
			return "", "", goerr.Wrap(err, "failed to compute next version")
		}
	}
	if err := next.Validate(); err != nil {
		return "", "", goerr.Wrap(err, "invalid new version")
	}

	less, err := current.Version.Less(next)
	if err != nil {
		return "", "", err
	}
	if !less {
		return "", "", goerr.Wrap(model.ErrVersionNotIncreased, "refusing to bump",
			goerr.V("current", current.Version), goerr.V("new", next))
	}

	if err := pyproject.SetVersion(in.ManifestPath, next); err != nil {
		return "", "", goerr.Wrap(err, "failed to update manifest")
	}

	ctxlog.From(ctx).Info("Bumped version", "from", current.Version, "to", next)
	return current.Version, next, nil
}

// TagInput describes the commit and tag of a release
type TagInput struct {
	Version model.Version
	Paths   []string // files whose change is staged into the release commit
	Remote  string
	Branch  string // empty means the current branch
	Message string // commit and tag message, defaults to "Release v<version>"
}

// Tag commits the staged release change, pushes it and replaces the tag
// v<version> locally and on the remote. Re-running for the same version is
// safe: a missing tag is not an error and an empty commit is skipped.
func (uc *Release) Tag(ctx context.Context, in *TagInput) error {
	logger := ctxlog.From(ctx)

	if uc.git == nil {
		return goerr.Wrap(ErrNotConfigured, "git client is required to tag")
	}
	if err := in.Version.Validate(); err != nil {
		return goerr.Wrap(err, "refusing to tag invalid version")
	}

	tag := in.Version.TagName()
	message := in.Message
	if message == "" {
		message = "Release " + tag
	}
	remote := in.Remote
	if remote == "" {
		remote = DefaultRemote
	}
	branch := in.Branch
	if branch == "" {
		current, err := uc.git.CurrentBranch(ctx)
		if err != nil {
			return goerr.Wrap(err, "cannot choose the branch to push, set it explicitly")
		}
		branch = current
	}

	if err := uc.git.Add(ctx, in.Paths...); err != nil {
		return err
	}
	staged, err := uc.git.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if staged {
		if err := uc.git.Commit(ctx, message); err != nil {
			return err
		}
		logger.Info("Committed release change", "message", message)
	} else {
		logger.Info("Nothing to commit, tagging current HEAD")
	}

	if err := uc.git.Push(ctx, remote, branch); err != nil {
		return err
	}

	// the tag may not exist yet
	if err := uc.git.DeleteTag(ctx, tag); err != nil {
		logger.Debug("Local tag not deleted", "tag", tag, "error", err)
	}
	if err := uc.git.DeleteRemoteTag(ctx, remote, tag); err != nil {
		logger.Debug("Remote tag not deleted", "tag", tag, "remote", remote, "error", err)
	}

	if err := uc.git.CreateAnnotatedTag(ctx, tag, message); err != nil {
		return err
	}
	if err := uc.git.PushTag(ctx, remote, tag); err != nil {
		return err
	}

	logger.Info("Tagged release", "tag", tag, "remote", remote, "branch", branch)
	return nil
}

// Build produces the distributable artifacts of the project at dir
func (uc *Release) Build(ctx context.Context, dir string) ([]*model.Artifact, error) {
	if uc.builder == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "builder is required to build")
	}
	return uc.builder.Build(ctx, dir)
}

// ResolveRepository returns the GitHub repository from an explicit
// "owner/name" value or, when empty, from the URL of remote.
func (uc *Release) ResolveRepository(ctx context.Context, explicit, remote string) (model.Repository, error) {
	if explicit != "" {
		return model.ParseRepository(explicit)
	}
	if uc.git == nil {
		return model.Repository{}, goerr.Wrap(ErrNotConfigured, "repository is not set and git client is unavailable")
	}
	if remote == "" {
		remote = DefaultRemote
	}

	remoteURL, err := uc.git.RemoteURL(ctx, remote)
	if err != nil {
		return model.Repository{}, goerr.Wrap(err, "repository is not set and cannot be derived from git remote")
	}
	return model.ParseRepository(remoteURL)
}

// PublishInput describes a release publication
type PublishInput struct {
	Dir           string // project root, used when Artifacts is nil
	Manifest      *model.Manifest
	Repository    model.Repository
	TagName       string // tag that triggered the publication, empty to skip the check
	Artifacts     []*model.Artifact
	ChangelogPath string
	Draft         bool
	// Steps already run for this release, kept first in the result so the
	// record and announcement see them
	Steps []model.StepResult
}

// Publish creates the release bound to v<version>, replacing an existing
// one, uploads the artifacts, then runs the best-effort steps. A failed
// best-effort step is recorded on the result and never returned as error.
func (uc *Release) Publish(ctx context.Context, in *PublishInput) (*model.PublishResult, error) {
	logger := ctxlog.From(ctx)

	if uc.github == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "GitHub client is required to publish")
	}
	if in.Manifest == nil {
		return nil, goerr.New("manifest is required to publish")
	}
	version := in.Manifest.Version
	if err := version.Validate(); err != nil {
		return nil, goerr.Wrap(err, "refusing to publish invalid version")
	}
	tag := version.TagName()
	if in.TagName != "" && in.TagName != tag {
		return nil, goerr.Wrap(ErrTagMismatch, "refusing to publish",
			goerr.V("tag", in.TagName), goerr.V("expected", tag))
	}

	result := &model.PublishResult{
		Repository: in.Repository,
		Version:    version,
		Steps:      append([]model.StepResult(nil), in.Steps...),
		StartedAt:  uc.now(),
	}

	artifacts := in.Artifacts
	if artifacts == nil {
		built, err := uc.Build(ctx, in.Dir)
		if err != nil {
			return nil, err
		}
		artifacts = built
		result.AddStep(model.StepBuild, model.StepSucceeded, "")
	}
	result.Artifacts = artifacts

	var body string
	if in.ChangelogPath != "" {
		section, err := changelog.ReadSection(in.ChangelogPath, version)
		if err != nil {
			return nil, err
		}
		body = section
	}

	existing, err := uc.github.GetReleaseByTag(ctx, in.Repository, tag)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Info("Replacing existing release", "tag", tag, "release_id", existing.ID, "draft", existing.Draft)
		if err := uc.github.DeleteRelease(ctx, in.Repository, existing.ID); err != nil {
			return nil, err
		}
	}

	release, err := uc.github.CreateRelease(ctx, &model.ReleaseRequest{
		Repository:    in.Repository,
		TagName:       tag,
		Name:          version.ReleaseName(),
		Body:          body,
		Prerelease:    version.IsPrerelease(),
		Draft:         in.Draft,
		GenerateNotes: true,
	})
	if err != nil {
		return nil, err
	}
	result.Release = release
	result.AddStep(model.StepRelease, model.StepSucceeded, release.HTMLURL)
	logger.Info("Created release", "tag", tag, "release_id", release.ID, "url", release.HTMLURL)

	for _, a := range artifacts {
		if err := uc.github.UploadReleaseAsset(ctx, in.Repository, release.ID, a); err != nil {
			return nil, err
		}
		release.Assets = append(release.Assets, a.Name)
		logger.Info("Uploaded release asset", "name", a.Name, "size", a.Size)
	}
	result.AddStep(model.StepAssets, model.StepSucceeded, "")

	uc.uploadIndex(ctx, in.Manifest, result)
	uc.mirror(ctx, result)

	result.FinishedAt = uc.now()
	uc.record(ctx, result)
	uc.announce(ctx, result)

	return result, nil
}

func (uc *Release) uploadIndex(ctx context.Context, manifest *model.Manifest, result *model.PublishResult) {
	if uc.index == nil {
		result.AddStep(model.StepIndexUpload, model.StepSkipped, "not configured")
		return
	}
	if err := uc.index.Upload(ctx, manifest, result.Artifacts); err != nil {
		ctxlog.From(ctx).Warn("Package index upload failed, continuing", "error", err)
		result.AddStep(model.StepIndexUpload, model.StepFailed, err.Error())
		return
	}
	result.AddStep(model.StepIndexUpload, model.StepSucceeded, "")
}

func (uc *Release) mirror(ctx context.Context, result *model.PublishResult) {
	if uc.store == nil {
		result.AddStep(model.StepMirror, model.StepSkipped, "not configured")
		return
	}
	for _, a := range result.Artifacts {
		loc, err := uc.store.Put(ctx, result.Version, a)
		if err != nil {
			ctxlog.From(ctx).Warn("Artifact mirror failed, continuing", "name", a.Name, "error", err)
			result.AddStep(model.StepMirror, model.StepFailed, err.Error())
			return
		}
		ctxlog.From(ctx).Info("Mirrored artifact", "name", a.Name, "location", loc)
	}
	result.AddStep(model.StepMirror, model.StepSucceeded, "")
}

func (uc *Release) record(ctx context.Context, result *model.PublishResult) {
	if uc.recorder == nil {
		result.AddStep(model.StepRecord, model.StepSkipped, "not configured")
		return
	}
	if err := uc.recorder.Record(ctx, model.NewReleaseRecord(result)); err != nil {
		ctxlog.From(ctx).Warn("Release record failed, continuing", "error", err)
		result.AddStep(model.StepRecord, model.StepFailed, err.Error())
		return
	}
	result.AddStep(model.StepRecord, model.StepSucceeded, "")
}

func (uc *Release) announce(ctx context.Context, result *model.PublishResult) {
	if uc.notifier == nil {
		result.AddStep(model.StepAnnouncement, model.StepSkipped, "not configured")
		return
	}
	if err := uc.notifier.Notify(ctx, result); err != nil {
		ctxlog.From(ctx).Warn("Announcement failed, continuing", "error", err)
		result.AddStep(model.StepAnnouncement, model.StepFailed, err.Error())
		return
	}
	result.AddStep(model.StepAnnouncement, model.StepSucceeded, "")
}

// RunInput describes a full local release
type RunInput struct {
	Dir           string
	ManifestPath  string
	Repository    string // "owner/name", empty to derive from the remote URL
	Paths         []string
	Remote        string
	Branch        string
	ChangelogPath string
	Draft         bool
}

// Run executes the whole pipeline: extract version, tag, build, publish.
// The version is validated before anything is committed or pushed.
func (uc *Release) Run(ctx context.Context, in *RunInput) (*model.PublishResult, error) {
	manifest, err := uc.ExtractVersion(ctx, in.ManifestPath)
	if err != nil {
		return nil, err
	}

	repo, err := uc.ResolveRepository(ctx, in.Repository, in.Remote)
	if err != nil {
		return nil, err
	}

	paths := in.Paths
	if len(paths) == 0 {
		paths = []string{in.ManifestPath}
	}
	if err := uc.Tag(ctx, &TagInput{
		Version: manifest.Version,
		Paths:   paths,
		Remote:  in.Remote,
		Branch:  in.Branch,
	}); err != nil {
		return nil, err
	}

	// publish builds since no artifacts are given
	return uc.Publish(ctx, &PublishInput{
		Dir:           in.Dir,
		Manifest:      manifest,
		Repository:    repo,
		ChangelogPath: in.ChangelogPath,
		Draft:         in.Draft,
		Steps: []model.StepResult{
			{Name: model.StepTag, Status: model.StepSucceeded, Detail: manifest.Version.TagName()},
		},
	})
}
