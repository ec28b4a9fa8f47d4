package config

import (
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds announcement configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
	Channel    string
}

// Flags returns CLI flags for the announcement
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL, disabled when empty",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("SHIPWRIGHT_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Channel overriding the webhook default",
			Destination: &c.Channel,
			Sources:     cli.EnvVars("SHIPWRIGHT_SLACK_CHANNEL"),
		},
	}
}

// NewNotifier creates the notifier, or nil when no webhook URL is set
func (c *Slack) NewNotifier() (interfaces.Notifier, error) {
	if c.WebhookURL == "" {
		return nil, nil
	}
	var opts []slack.Option
	if c.Channel != "" {
		opts = append(opts, slack.WithChannel(c.Channel))
	}
	return slack.New(c.WebhookURL, opts...)
}
