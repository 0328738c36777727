package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/romfetch/pkg/cli/config"
	"github.com/m-mizutani/romfetch/pkg/usecase"
)

func cmdBatch() *cli.Command {
	var (
		jobFile       string
		downloaderCfg config.Downloader
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "TOML file listing [[job]] entries",
			Required:    true,
			Destination: &jobFile,
			Sources:     cli.EnvVars("ROMFETCH_JOB_FILE"),
		},
	}
	flags = append(flags, downloaderCfg.Flags()...)

	return &cli.Command{
		Name:  "batch",
		Usage: "Run download and extract jobs from a file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			jobs, err := usecase.LoadJobFile(jobFile)
			if err != nil {
				return err
			}
			ctxlog.From(ctx).Info("Loaded job file", "path", jobFile, "job_count", len(jobs.Jobs))

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			bars := newProgressBars(ctx, c.Root().Writer)
			opts := append(downloaderCfg.Options(), usecase.WithEmitter(bars))
			batch := usecase.NewBatch(usecase.NewDownloader(opts...), usecase.NewExtractor())

			if err := batch.Run(ctx, jobs.Jobs); err != nil {
				for _, job := range jobs.Jobs {
					bars.Abort(job.ID)
				}
				cancel()
				bars.Wait()
				return err
			}
			bars.Wait()

			color.New(color.FgGreen).Fprintf(c.Root().Writer, "Completed %d jobs\n", len(jobs.Jobs))
			return nil
		},
	}
}
