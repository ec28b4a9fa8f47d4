package interfaces

//go:generate moq -out mocks/usecase_mock.go -pkg mocks . WebhookUseCase EventProcessor ReleaseUseCase

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// EventProcessor runs the workflow bound to a parsed GitHub event payload
type EventProcessor interface {
	ProcessEvent(ctx context.Context, eventType string, payload any) error
}

// ReleaseUseCase defines operations for tag push processing
type ReleaseUseCase interface {
	// ProcessTagPush downloads the tagged source and runs the publish workflow
	ProcessTagPush(ctx context.Context, info *model.ReleaseInfo) (*model.PublishResult, error)
}
