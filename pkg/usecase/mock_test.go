package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// mockGit simulates a repository with local and remote tags so that
// delete-then-create semantics behave like git does.
type mockGit struct {
	calls      []string
	staged     bool
	branch     string
	branchErr  error
	remoteURL  string
	localTags  map[string]bool
	remoteTags map[string]bool
	failOn     map[string]error
}

func newMockGit() *mockGit {
	return &mockGit{
		branch:     "main",
		remoteURL:  "git@github.com:octo/ghost.git",
		localTags:  map[string]bool{},
		remoteTags: map[string]bool{},
		failOn:     map[string]error{},
	}
}

func (m *mockGit) record(call string) error {
	m.calls = append(m.calls, call)
	return m.failOn[call]
}

func (m *mockGit) Add(ctx context.Context, paths ...string) error {
	if err := m.record(fmt.Sprintf("add %v", paths)); err != nil {
		return err
	}
	m.staged = true
	return nil
}

func (m *mockGit) HasStagedChanges(ctx context.Context) (bool, error) {
	return m.staged, nil
}

func (m *mockGit) Commit(ctx context.Context, message string) error {
	if err := m.record("commit " + message); err != nil {
		return err
	}
	m.staged = false
	return nil
}

func (m *mockGit) Push(ctx context.Context, remote, branch string) error {
	return m.record("push " + remote + " " + branch)
}

func (m *mockGit) CurrentBranch(ctx context.Context) (string, error) {
	if m.branchErr != nil {
		return "", m.branchErr
	}
	return m.branch, nil
}

func (m *mockGit) RemoteURL(ctx context.Context, remote string) (string, error) {
	if m.remoteURL == "" {
		return "", errors.New("no such remote")
	}
	return m.remoteURL, nil
}

func (m *mockGit) CreateAnnotatedTag(ctx context.Context, tag, message string) error {
	if err := m.record("tag " + tag); err != nil {
		return err
	}
	if m.localTags[tag] {
		return errors.New("tag already exists")
	}
	m.localTags[tag] = true
	return nil
}

func (m *mockGit) DeleteTag(ctx context.Context, tag string) error {
	m.calls = append(m.calls, "delete-tag "+tag)
	if !m.localTags[tag] {
		return errors.New("tag not found")
	}
	delete(m.localTags, tag)
	return nil
}

func (m *mockGit) DeleteRemoteTag(ctx context.Context, remote, tag string) error {
	m.calls = append(m.calls, "delete-remote-tag "+remote+" "+tag)
	if !m.remoteTags[tag] {
		return errors.New("remote ref does not exist")
	}
	delete(m.remoteTags, tag)
	return nil
}

func (m *mockGit) PushTag(ctx context.Context, remote, tag string) error {
	if err := m.record("push-tag " + remote + " " + tag); err != nil {
		return err
	}
	if m.remoteTags[tag] {
		return errors.New("tag already exists in the remote")
	}
	m.remoteTags[tag] = true
	return nil
}

func (m *mockGit) hasPushed() bool {
	for _, c := range m.calls {
		if strings.HasPrefix(c, "push") {
			return true
		}
	}
	return false
}

// mockBuilder returns fixed artifacts and records the build directories
type mockBuilder struct {
	artifacts []*model.Artifact
	err       error
	dirs      []string
	onBuild   func(dir string)
}

func (m *mockBuilder) Build(ctx context.Context, dir string) ([]*model.Artifact, error) {
	m.dirs = append(m.dirs, dir)
	if m.onBuild != nil {
		m.onBuild(dir)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.artifacts, nil
}

// mockGitHub keeps releases per tag
type mockGitHub struct {
	downloadZipballFunc func(ctx context.Context, owner, repo, ref string) ([]byte, error)
	downloadRefs        []string

	releases map[string]*model.Release
	nextID   int64
	requests []*model.ReleaseRequest
	deleted  []int64
	uploaded []string
	failOn   map[string]error
}

func newMockGitHub() *mockGitHub {
	return &mockGitHub{
		releases: map[string]*model.Release{},
		nextID:   100,
		failOn:   map[string]error{},
	}
}

func (m *mockGitHub) DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	m.downloadRefs = append(m.downloadRefs, owner+"/"+repo+"@"+ref)
	if m.downloadZipballFunc != nil {
		return m.downloadZipballFunc(ctx, owner, repo, ref)
	}
	return nil, errors.New("mock not configured")
}

func (m *mockGitHub) GetReleaseByTag(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
	if err := m.failOn["get"]; err != nil {
		return nil, err
	}
	return m.releases[tag], nil
}

func (m *mockGitHub) DeleteRelease(ctx context.Context, repo model.Repository, id int64) error {
	m.deleted = append(m.deleted, id)
	for tag, r := range m.releases {
		if r.ID == id {
			delete(m.releases, tag)
		}
	}
	return nil
}

func (m *mockGitHub) CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error) {
	m.requests = append(m.requests, req)
	if err := m.failOn["create"]; err != nil {
		return nil, err
	}
	if _, ok := m.releases[req.TagName]; ok {
		return nil, errors.New("already_exists")
	}
	m.nextID++
	r := &model.Release{
		ID:      m.nextID,
		TagName: req.TagName,
		Name:    req.Name,
		HTMLURL: "https://github.com/" + req.Repository.FullName() + "/releases/tag/" + req.TagName,
		Draft:   req.Draft,
	}
	m.releases[req.TagName] = r
	return r, nil
}

func (m *mockGitHub) UploadReleaseAsset(ctx context.Context, repo model.Repository, releaseID int64, artifact *model.Artifact) error {
	if err := m.failOn["upload"]; err != nil {
		return err
	}
	m.uploaded = append(m.uploaded, artifact.Name)
	return nil
}

type mockIndexUploader struct {
	err   error
	calls int
}

func (m *mockIndexUploader) Upload(ctx context.Context, manifest *model.Manifest, artifacts []*model.Artifact) error {
	m.calls++
	return m.err
}

type mockArtifactStore struct {
	err  error
	puts []string
}

func (m *mockArtifactStore) Put(ctx context.Context, version model.Version, artifact *model.Artifact) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.puts = append(m.puts, artifact.Name)
	return "gs://bucket/" + version.String() + "/" + artifact.Name, nil
}

type mockReleaseRecorder struct {
	err     error
	records []*model.ReleaseRecord
}

func (m *mockReleaseRecorder) Record(ctx context.Context, record *model.ReleaseRecord) error {
	m.records = append(m.records, record)
	return m.err
}

type mockNotifier struct {
	err     error
	results []*model.PublishResult
}

func (m *mockNotifier) Notify(ctx context.Context, result *model.PublishResult) error {
	m.results = append(m.results, result)
	return m.err
}

var testArtifacts = []*model.Artifact{
	{Path: "/dist/ghost-1.1.0.tar.gz", Name: "ghost-1.1.0.tar.gz", Kind: model.ArtifactSdist, Size: 10},
	{Path: "/dist/ghost-1.1.0-py3-none-any.whl", Name: "ghost-1.1.0-py3-none-any.whl", Kind: model.ArtifactWheel, Size: 20},
}

// writeManifest writes a pyproject.toml with the given version into a new
// temporary directory and returns the manifest path
func writeManifest(t *testing.T, version string) string {
	t.Helper()
	dir := t.TempDir()
	content := "[project]\nname = \"ghost\"\n"
	if version != "" {
		content += "version = \"" + version + "\"\n"
	}
	path := filepath.Join(dir, "pyproject.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func stepStatus(result *model.PublishResult, name string) model.StepStatus {
	for _, s := range result.Steps {
		if s.Name == name {
			return s.Status
		}
	}
	return ""
}
