package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/romfetch/pkg/cli/config"
	"github.com/m-mizutani/romfetch/pkg/usecase"
)

func TestDownloader_Flags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg config.Downloader
		cmd := &cli.Command{
			Name:   "test",
			Flags:  cfg.Flags(),
			Action: func(ctx context.Context, c *cli.Command) error { return nil },
		}
		gt.NoError(t, cmd.Run(context.Background(), []string{"test"}))

		gt.Equal(t, cfg.EmitInterval, usecase.DefaultEmitInterval)
		gt.Equal(t, cfg.MaxConcurrent, usecase.DefaultMaxConcurrentDownloads)
		gt.Equal(t, cfg.ResponseHeaderTimeout, 30*time.Second)
		gt.Equal(t, len(cfg.Options()), 4)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("ROMFETCH_EMIT_INTERVAL", "1s")
		t.Setenv("ROMFETCH_MAX_CONCURRENT_DOWNLOADS", "2")
		t.Setenv("ROMFETCH_USER_AGENT", "custom/1.0")

		var cfg config.Downloader
		cmd := &cli.Command{
			Name:   "test",
			Flags:  cfg.Flags(),
			Action: func(ctx context.Context, c *cli.Command) error { return nil },
		}
		gt.NoError(t, cmd.Run(context.Background(), []string{"test"}))

		gt.Equal(t, cfg.EmitInterval, time.Second)
		gt.Equal(t, cfg.MaxConcurrent, 2)
		gt.Equal(t, cfg.UserAgent, "custom/1.0")
		gt.Equal(t, len(cfg.Options()), 5)
	})
}

func TestSentry_Configure_Disabled(t *testing.T) {
	var cfg config.Sentry
	gt.False(t, cfg.Enabled())

	flush, err := cfg.Configure()
	gt.NoError(t, err)
	flush()
}

func TestSlack_Notifier(t *testing.T) {
	var cfg config.Slack
	gt.Nil(t, cfg.Notifier())

	cfg.WebhookURL = "https://hooks.slack.com/services/T000/B000/XXXX"
	gt.NotNil(t, cfg.Notifier())
}
