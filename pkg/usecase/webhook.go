package usecase

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/utils/async"
)

type webhookUseCase struct {
	processor interfaces.EventProcessor
}

// NewWebhook creates a new instance of WebhookUseCase. With a nil
// processor, events are only logged.
func NewWebhook(processor interfaces.EventProcessor) *webhookUseCase {
	return &webhookUseCase{processor: processor}
}

// ProcessEvent logs the event and, for release tag pushes, dispatches the
// publish workflow in the background so the webhook is acknowledged quickly.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"ref", event.Ref,
		"repository", event.Repository,
		"sender", event.Sender,
		"supported", event.IsSupportedEvent(),
	)

	if !event.IsSupportedEvent() {
		logger.Debug("Ignoring event", "type", event.Type, "ref", event.Ref, "deleted", event.Deleted)
		return nil
	}
	if uc.processor == nil {
		logger.Warn("No event processor configured, skipping publish", "ref", event.Ref)
		return nil
	}

	payload, err := github.ParseWebHook(string(event.Type), event.RawPayload)
	if err != nil {
		return goerr.Wrap(err, "failed to parse webhook payload", goerr.V("id", event.ID))
	}

	eventType := string(event.Type)
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.processor.ProcessEvent(ctx, eventType, payload)
	})

	return nil
}
