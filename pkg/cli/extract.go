package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/romfetch/pkg/domain/model"
	"github.com/m-mizutani/romfetch/pkg/usecase"
)

func cmdExtract() *cli.Command {
	var req model.ExtractRequest

	return &cli.Command{
		Name:    "extract",
		Aliases: []string{"x"},
		Usage:   "Extract a ZIP archive into a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "archive",
				Aliases:     []string{"a"},
				Usage:       "Path of the ZIP archive",
				Required:    true,
				Destination: &req.ArchivePath,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "Output directory",
				Required:    true,
				Destination: &req.ExtractPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := usecase.NewExtractor().Extract(ctx, &req)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			color.New(color.FgGreen).Fprintf(w, "Extracted %d files", len(result.Files))
			color.New(color.FgHiBlack).Fprintf(w, " (%d directories, %d bytes)", len(result.Directories), result.Size)
			color.New(color.FgGreen).Fprintf(w, " to %s\n", result.OutputDir)
			return nil
		},
	}
}
