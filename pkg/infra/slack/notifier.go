package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/romfetch/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Notifier posts a message to a Slack incoming webhook when a download completes.
// Progress events are ignored.
type Notifier struct {
	webhookURL string
}

// NewNotifier creates a Notifier for the given incoming webhook URL
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{webhookURL: webhookURL}
}

// Emit implements interfaces.EventEmitter
func (n *Notifier) Emit(ctx context.Context, event model.Event) error {
	if event.Name != model.EventDownloadComplete {
		return nil
	}

	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("Download `%s` completed (%s)", event.Payload.DownloadID, humanBytes(event.Payload.FileSize)),
	}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack webhook", goerr.V("download_id", event.Payload.DownloadID))
	}

	return nil
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
