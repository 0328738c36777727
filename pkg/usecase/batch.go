package usecase

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/m-mizutani/romfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/romfetch/pkg/domain/model"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
)

// LoadJobFile reads a batch file:
//
//	[[job]]
//	url = "https://example.com/game.zip"
//	directory = "/data/downloads"
//	filename = "game.zip"
//	extract_to = "/data/roms/snes"
func LoadJobFile(path string) (*model.JobFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read job file", goerr.V("path", path), goerr.T(types.ErrTagFilesystem))
	}

	var jobFile model.JobFile
	if err := toml.Unmarshal(raw, &jobFile); err != nil {
		return nil, goerr.Wrap(err, "failed to parse job file", goerr.V("path", path), goerr.T(types.ErrTagInvalidInput))
	}

	for i := range jobFile.Jobs {
		if jobFile.Jobs[i].ID == "" {
			jobFile.Jobs[i].ID = uuid.NewString()
		}
	}

	return &jobFile, nil
}

// Batch runs jobs one after another: download, then extract if requested
type Batch struct {
	downloader interfaces.DownloadUseCase
	extractor  interfaces.ExtractUseCase
}

// NewBatch creates a Batch
func NewBatch(downloader interfaces.DownloadUseCase, extractor interfaces.ExtractUseCase) *Batch {
	return &Batch{
		downloader: downloader,
		extractor:  extractor,
	}
}

// Run stops at the first failing job
func (x *Batch) Run(ctx context.Context, jobs []model.Job) error {
	logger := ctxlog.From(ctx)

	for i := range jobs {
		job := &jobs[i]
		req := job.DownloadRequest()
		if err := req.Validate(); err != nil {
			return goerr.Wrap(err, "invalid job", goerr.V("index", i), goerr.V("job_id", job.ID))
		}

		logger.Info("Running job", "index", i, "job_id", job.ID, "url", job.URL)
		if err := x.downloader.Run(ctx, req); err != nil {
			return goerr.Wrap(err, "job download failed", goerr.V("index", i), goerr.V("job_id", job.ID))
		}

		if job.ExtractTo == "" {
			continue
		}

		result, err := x.extractor.Extract(ctx, &model.ExtractRequest{
			ArchivePath: req.Destination(),
			ExtractPath: job.ExtractTo,
		})
		if err != nil {
			return goerr.Wrap(err, "job extraction failed", goerr.V("index", i), goerr.V("job_id", job.ID))
		}
		logger.Info("Job extracted", "job_id", job.ID, "file_count", len(result.Files))
	}

	return nil
}
