package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
)

// ExtractRequest describes a ZIP archive and where to unpack it
type ExtractRequest struct {
	ArchivePath string `json:"archive_path"`
	ExtractPath string `json:"extract_path"`
}

// Validate checks that both paths are set
func (r *ExtractRequest) Validate() error {
	if r.ArchivePath == "" {
		return goerr.New("archive_path is required", goerr.T(types.ErrTagInvalidInput))
	}
	if r.ExtractPath == "" {
		return goerr.New("extract_path is required", goerr.T(types.ErrTagInvalidInput))
	}
	return nil
}

// ExtractResult summarizes a successful extraction
type ExtractResult struct {
	OutputDir   string   `json:"output_dir"`
	Files       []string `json:"files"`       // sanitized paths relative to OutputDir, in archive order
	Directories []string `json:"directories"` // explicit directory entries only
	Size        int64    `json:"size"`        // total bytes written
}
