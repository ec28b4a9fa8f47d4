package firestore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/infra/firestore"
)

func TestDocumentID(t *testing.T) {
	rec := &model.ReleaseRecord{Repository: "octo/ghost", TagName: "v1.1"}
	gt.Value(t, firestore.DocumentID(rec)).Equal("octo_ghost_v1.1")
}

func TestClient_Record(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID is not set")
	}

	ctx := context.Background()
	recorder, err := firestore.New(ctx, projectID, os.Getenv("TEST_FIRESTORE_DATABASE_ID"), "shipwright-test")
	gt.NoError(t, err)

	gt.NoError(t, recorder.Record(ctx, &model.ReleaseRecord{
		Repository:  "octo/ghost",
		TagName:     "v0.0.1",
		Version:     "0.0.1",
		Artifacts:   []string{"ghost-0.0.1.tar.gz"},
		Steps:       []model.StepResult{{Name: "release", Status: model.StepSucceeded}},
		PublishedAt: time.Now(),
	}))
}
