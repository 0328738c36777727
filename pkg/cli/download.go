package cli

import (
	"context"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/romfetch/pkg/cli/config"
	"github.com/m-mizutani/romfetch/pkg/domain/model"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
	"github.com/m-mizutani/romfetch/pkg/usecase"
)

func cmdDownload() *cli.Command {
	var (
		req           model.DownloadRequest
		headers       []string
		downloaderCfg config.Downloader
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "url",
			Aliases:     []string{"u"},
			Usage:       "URL to download",
			Required:    true,
			Destination: &req.URL,
		},
		&cli.StringFlag{
			Name:        "dir",
			Aliases:     []string{"d"},
			Usage:       "Destination directory",
			Value:       ".",
			Destination: &req.Directory,
		},
		&cli.StringFlag{
			Name:        "filename",
			Aliases:     []string{"f"},
			Usage:       "Destination file name",
			Required:    true,
			Destination: &req.Filename,
		},
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Download id shown in progress output (generated when empty)",
			Destination: &req.ID,
		},
		&cli.StringSliceFlag{
			Name:        "header",
			Aliases:     []string{"H"},
			Usage:       "Request header as key=value, repeatable",
			Destination: &headers,
		},
	}
	flags = append(flags, downloaderCfg.Flags()...)

	return &cli.Command{
		Name:    "download",
		Aliases: []string{"dl"},
		Usage:   "Download a file and show its progress",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if req.ID == "" {
				req.ID = uuid.NewString()
			}
			parsed, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			req.Headers = parsed

			if err := req.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			bars := newProgressBars(ctx, c.Root().Writer)
			opts := append(downloaderCfg.Options(), usecase.WithEmitter(bars))
			downloader := usecase.NewDownloader(opts...)

			if err := downloader.Run(ctx, &req); err != nil {
				bars.Abort(req.ID)
				cancel()
				bars.Wait()
				return err
			}
			bars.Wait()

			color.New(color.FgGreen).Fprintf(c.Root().Writer, "Saved %s\n", req.Destination())
			return nil
		},
	}
}

func parseHeaders(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, goerr.New("header must be key=value", goerr.V("header", v), goerr.T(types.ErrTagInvalidInput))
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}
