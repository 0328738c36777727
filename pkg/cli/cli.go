package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/romfetch/pkg/cli/config"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
	"github.com/m-mizutani/romfetch/pkg/utils/errs"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg config.Logger
		sentryCfg config.Sentry
		logger    *slog.Logger
		flush     = func() {}
	)

	// Environment from .env must be in place before flags read their sources.
	if err := loadDotEnv(".env"); err != nil {
		return err
	}

	app := &cli.Command{
		Name:    types.AppName,
		Usage:   "Download files with progress events and unpack ZIP archives",
		Version: types.Version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			flush, err = sentryCfg.Configure()
			if err != nil {
				return nil, err
			}
			if sentryCfg.Enabled() {
				logger.Info("Error reporting enabled", "env", sentryCfg.Environment)
			}
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			flush()
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdDownload(),
			cmdExtract(),
			cmdBatch(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		errs.Handle(ctxlog.With(ctx, logger), err)
		return err
	}

	return nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}
