package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/romfetch/pkg/infra/slack"
)

// Slack holds notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL notified when a download completes",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("ROMFETCH_SLACK_WEBHOOK_URL"),
		},
	}
}

// Notifier returns nil when no webhook is configured
func (c *Slack) Notifier() *slack.Notifier {
	if c.WebhookURL == "" {
		return nil
	}
	return slack.NewNotifier(c.WebhookURL)
}
