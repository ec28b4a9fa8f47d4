package model

import "time"

// StepStatus is the outcome of a pipeline step
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepSkipped   StepStatus = "skipped"
	StepFailed    StepStatus = "failed"
)

// Pipeline step names
const (
	StepTag          = "tag"
	StepBuild        = "build"
	StepRelease      = "release"
	StepAssets       = "assets"
	StepIndexUpload  = "index upload"
	StepMirror       = "artifact mirror"
	StepRecord       = "release record"
	StepAnnouncement = "announcement"
)

// StepResult records one pipeline step
type StepResult struct {
	Name   string     `json:"name" firestore:"name"`
	Status StepStatus `json:"status" firestore:"status"`
	Detail string     `json:"detail,omitempty" firestore:"detail"`
}

// PublishResult is the outcome of the release publisher
type PublishResult struct {
	Repository Repository
	Version    Version
	Release    *Release
	Artifacts  []*Artifact
	Steps      []StepResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// AddStep appends a step outcome
func (r *PublishResult) AddStep(name string, status StepStatus, detail string) {
	r.Steps = append(r.Steps, StepResult{Name: name, Status: status, Detail: detail})
}

// Warnings returns failed steps. Only best-effort steps are recorded as
// failed on a result that is returned without error.
func (r *PublishResult) Warnings() []StepResult {
	var warnings []StepResult
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			warnings = append(warnings, s)
		}
	}
	return warnings
}

// ReleaseRecord is the persisted summary of a publication
type ReleaseRecord struct {
	Repository  string       `firestore:"repository"`
	TagName     string       `firestore:"tag_name"`
	Version     string       `firestore:"version"`
	ReleaseID   int64        `firestore:"release_id"`
	ReleaseURL  string       `firestore:"release_url"`
	Artifacts   []string     `firestore:"artifacts"`
	Steps       []StepResult `firestore:"steps"`
	PublishedAt time.Time    `firestore:"published_at"`
}

// NewReleaseRecord builds the persisted form of a publish result
func NewReleaseRecord(r *PublishResult) *ReleaseRecord {
	rec := &ReleaseRecord{
		Repository:  r.Repository.FullName(),
		TagName:     r.Version.TagName(),
		Version:     r.Version.String(),
		Steps:       r.Steps,
		PublishedAt: r.FinishedAt,
	}
	if r.Release != nil {
		rec.ReleaseID = r.Release.ID
		rec.ReleaseURL = r.Release.HTMLURL
	}
	for _, a := range r.Artifacts {
		rec.Artifacts = append(rec.Artifacts, a.Name)
	}
	return rec
}
