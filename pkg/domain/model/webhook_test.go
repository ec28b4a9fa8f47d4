package model_test

import (
	"testing"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

func TestWebhookEvent_IsSupportedEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.WebhookEvent
		expected bool
	}{
		{
			name: "Release tag push - supported",
			event: &model.WebhookEvent{
				Type: model.EventTypePush,
				Ref:  "refs/tags/v1.2.0",
			},
			expected: true,
		},
		{
			name: "Release tag deleted - not supported",
			event: &model.WebhookEvent{
				Type:    model.EventTypePush,
				Ref:     "refs/tags/v1.2.0",
				Deleted: true,
			},
			expected: false,
		},
		{
			name: "Branch push - not supported",
			event: &model.WebhookEvent{
				Type: model.EventTypePush,
				Ref:  "refs/heads/main",
			},
			expected: false,
		},
		{
			name: "Non release tag - not supported",
			event: &model.WebhookEvent{
				Type: model.EventTypePush,
				Ref:  "refs/tags/nightly",
			},
			expected: false,
		},
		{
			name: "Bare v tag - not supported",
			event: &model.WebhookEvent{
				Type: model.EventTypePush,
				Ref:  "refs/tags/v",
			},
			expected: false,
		},
		{
			name: "Ping event",
			event: &model.WebhookEvent{
				Type: model.EventTypePing,
			},
			expected: false,
		},
		{
			name: "Unknown event type",
			event: &model.WebhookEvent{
				Type: model.EventTypeUnknown,
				Ref:  "refs/tags/v1.0.0",
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.IsSupportedEvent()
			if got != tt.expected {
				t.Errorf("IsSupportedEvent() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWebhookEvent_TagName(t *testing.T) {
	e := &model.WebhookEvent{Ref: "refs/tags/v0.3.1"}
	if got := e.TagName(); got != "v0.3.1" {
		t.Errorf("TagName() = %q, want v0.3.1", got)
	}

	e = &model.WebhookEvent{Ref: "refs/heads/main"}
	if got := e.TagName(); got != "" {
		t.Errorf("TagName() = %q, want empty", got)
	}
}
