package github

import (
	"context"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// EventProcessor processes GitHub webhook events
type EventProcessor struct {
	releaseUC interfaces.ReleaseUseCase
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(releaseUC interfaces.ReleaseUseCase) *EventProcessor {
	return &EventProcessor{
		releaseUC: releaseUC,
	}
}

// ProcessEvent processes a GitHub webhook event
func (p *EventProcessor) ProcessEvent(ctx context.Context, eventType string, payload any) error {
	logger := ctxlog.From(ctx)

	switch eventType {
	case string(model.EventTypePush):
		return p.processPushEvent(ctx, payload)
	default:
		logger.Info("Ignoring unsupported event type", "event_type", eventType)
		return nil
	}
}

// processPushEvent runs the publish workflow for a pushed release tag
func (p *EventProcessor) processPushEvent(ctx context.Context, payload any) error {
	logger := ctxlog.From(ctx)

	pushEvent, ok := payload.(*github.PushEvent)
	if !ok {
		logger.Warn("Invalid push event payload")
		return nil
	}

	if pushEvent.GetDeleted() {
		logger.Info("Ignoring tag deletion", "ref", pushEvent.GetRef())
		return nil
	}
	if !strings.HasPrefix(pushEvent.GetRef(), "refs/tags/") || !model.IsReleaseTag(strings.TrimPrefix(pushEvent.GetRef(), "refs/tags/")) {
		logger.Info("Ignoring push to non release ref", "ref", pushEvent.GetRef())
		return nil
	}

	releaseInfo, err := p.extractReleaseInfo(pushEvent)
	if err != nil {
		logger.Error("Failed to extract release info", "error", err)
		return err
	}

	result, err := p.releaseUC.ProcessTagPush(ctx, releaseInfo)
	if err != nil {
		logger.Error("Failed to publish release", "error", err,
			"owner", releaseInfo.Owner,
			"repo", releaseInfo.Repo,
			"tag", releaseInfo.TagName,
		)
		return err
	}

	logger.Info("Successfully published release",
		"owner", releaseInfo.Owner,
		"repo", releaseInfo.Repo,
		"tag", releaseInfo.TagName,
		"artifact_count", len(result.Artifacts),
		"warning_count", len(result.Warnings()),
	)

	return nil
}

// extractReleaseInfo extracts release information from a tag push event
func (p *EventProcessor) extractReleaseInfo(event *github.PushEvent) (*model.ReleaseInfo, error) {
	if event.GetRepo() == nil {
		return nil, goerr.New("missing repository information in push event")
	}

	// push payloads carry the owner as "name" and, for newer payloads, "login"
	owner := event.GetRepo().GetOwner().GetLogin()
	if owner == "" {
		owner = event.GetRepo().GetOwner().GetName()
	}
	repo := event.GetRepo().GetName()
	tagName := strings.TrimPrefix(event.GetRef(), "refs/tags/")
	commitSHA := event.GetAfter()

	if owner == "" || repo == "" || tagName == "" {
		return nil, goerr.New("missing required fields",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("tag", tagName))
	}

	return &model.ReleaseInfo{
		Owner:       owner,
		Repo:        repo,
		CommitSHA:   commitSHA,
		TagName:     tagName,
		ReleaseName: tagName,
	}, nil
}
