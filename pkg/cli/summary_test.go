package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

func TestPrintSummary(t *testing.T) {
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	result := &model.PublishResult{
		Repository: model.Repository{Owner: "octo", Name: "ghost"},
		Version:    "1.1.0",
		Release:    &model.Release{ID: 1, HTMLURL: "https://github.com/octo/ghost/releases/tag/v1.1.0"},
		Artifacts: []*model.Artifact{
			{Name: "ghost-1.1.0.tar.gz", Size: 42, SHA256: "abcd"},
		},
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
	result.AddStep(model.StepRelease, model.StepSucceeded, "")
	result.AddStep(model.StepIndexUpload, model.StepFailed, "403 Forbidden")
	result.AddStep(model.StepMirror, model.StepSkipped, "not configured")

	var buf bytes.Buffer
	printSummary(&buf, result)
	out := buf.String()

	gt.String(t, out).Contains("Released octo/ghost v1.1.0")
	gt.String(t, out).Contains("https://github.com/octo/ghost/releases/tag/v1.1.0")
	gt.String(t, out).Contains("[done] release")
	gt.String(t, out).Contains("[warn] index upload 403 Forbidden")
	gt.String(t, out).Contains("[skip] artifact mirror not configured")
	gt.String(t, out).Contains("ghost-1.1.0.tar.gz (42 bytes, sha256:abcd)")
	gt.String(t, out).Contains("1 best-effort step(s) failed")
	gt.String(t, out).Contains("finished in 3s")
}
