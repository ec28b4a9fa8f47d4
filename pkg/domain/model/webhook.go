package model

import (
	"strings"
	"time"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePush    WebhookEventType = "push"
	EventTypePing    WebhookEventType = "ping"
	EventTypeUnknown WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Ref        string           // Pushed ref (e.g., refs/tags/v1.0.0)
	Deleted    bool             // True when the push deleted the ref
	Repository string           // Repository full name
	Sender     string           // Sender username
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// TagName returns the pushed tag, or empty if the ref is not a tag
func (e *WebhookEvent) TagName() string {
	if !strings.HasPrefix(e.Ref, "refs/tags/") {
		return ""
	}
	return strings.TrimPrefix(e.Ref, "refs/tags/")
}

// IsSupportedEvent reports whether the event should launch the publish
// workflow: a push creating or moving a tag that matches v*.
func (e *WebhookEvent) IsSupportedEvent() bool {
	if e.Type != EventTypePush || e.Deleted {
		return false
	}
	return IsReleaseTag(e.TagName())
}
