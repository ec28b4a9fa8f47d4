package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/slack-go/slack"
)

type client struct {
	webhookURL string
	channel    string
}

// Option configures the notifier
type Option func(*client)

// WithChannel overrides the webhook default channel
func WithChannel(channel string) Option {
	return func(c *client) {
		c.channel = channel
	}
}

// New creates a notifier posting to a Slack incoming webhook
func New(webhookURL string, opts ...Option) (interfaces.Notifier, error) {
	if webhookURL == "" {
		return nil, goerr.New("Slack webhook URL is empty")
	}
	c := &client{webhookURL: webhookURL}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Notify posts a release announcement
func (c *client) Notify(ctx context.Context, result *model.PublishResult) error {
	msg := &slack.WebhookMessage{
		Channel: c.channel,
		Text:    Summary(result),
	}
	if err := slack.PostWebhookContext(ctx, c.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack message")
	}
	return nil
}

// Summary renders the announcement text in Slack mrkdwn
func Summary(result *model.PublishResult) string {
	var sb strings.Builder

	title := result.Version.TagName()
	if result.Release != nil && result.Release.HTMLURL != "" {
		title = fmt.Sprintf("<%s|%s>", result.Release.HTMLURL, title)
	}
	fmt.Fprintf(&sb, ":rocket: *%s* released %s\n", result.Repository.FullName(), title)

	for _, a := range result.Artifacts {
		fmt.Fprintf(&sb, "• `%s`\n", a.Name)
	}
	for _, w := range result.Warnings() {
		fmt.Fprintf(&sb, ":warning: %s: %s\n", w.Name, w.Detail)
	}

	return strings.TrimSuffix(sb.String(), "\n")
}
