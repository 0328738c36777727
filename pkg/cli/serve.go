package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/romfetch/pkg/cli/config"
	controller "github.com/m-mizutani/romfetch/pkg/controller/http"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
	"github.com/m-mizutani/romfetch/pkg/infra/events"
	"github.com/m-mizutani/romfetch/pkg/infra/metrics"
	"github.com/m-mizutani/romfetch/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg     config.Server
		downloaderCfg config.Downloader
		slackCfg      config.Slack
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, downloaderCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP API server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting romfetch server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("downloader", downloaderCfg),
				slog.Any("slack", slackCfg),
			)

			broker := events.NewBroker()
			promMetrics := metrics.New(types.AppName)

			dlOpts := downloaderCfg.Options()
			dlOpts = append(dlOpts,
				usecase.WithEmitter(broker),
				usecase.WithDownloadMetrics(promMetrics),
			)
			if notifier := slackCfg.Notifier(); notifier != nil {
				dlOpts = append(dlOpts, usecase.WithEmitter(notifier))
			}

			downloadUC := usecase.NewDownloader(dlOpts...)
			extractUC := usecase.NewExtractor(usecase.WithExtractMetrics(promMetrics))

			server, err := controller.NewServer(
				ctx,
				downloadUC,
				extractUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithBroker(broker),
				controller.WithMetricsHandler(promMetrics.Handler()),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
