package interfaces

import (
	"context"

	"github.com/m-mizutani/romfetch/pkg/domain/model"
)

// DownloadUseCase streams remote files to disk and reports progress as events
type DownloadUseCase interface {
	// Start validates the request and runs the download in the background.
	// It returns as soon as the background job is spawned.
	Start(ctx context.Context, req *model.DownloadRequest) error

	// Run performs the download in the calling goroutine
	Run(ctx context.Context, req *model.DownloadRequest) error
}

// ExtractUseCase unpacks ZIP archives
type ExtractUseCase interface {
	// Extract unpacks the archive and returns once it fully succeeded or failed
	Extract(ctx context.Context, req *model.ExtractRequest) (*model.ExtractResult, error)
}
