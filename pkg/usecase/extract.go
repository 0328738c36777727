package usecase

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/romfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/romfetch/pkg/domain/model"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
	"github.com/m-mizutani/romfetch/pkg/utils/safepath"
)

// Extractor unpacks ZIP archives entry by entry
type Extractor struct {
	metrics interfaces.Metrics
}

// ExtractorOption configures Extractor
type ExtractorOption func(*Extractor)

// WithExtractMetrics sets the metrics recorder
func WithExtractMetrics(metrics interfaces.Metrics) ExtractorOption {
	return func(x *Extractor) {
		x.metrics = metrics
	}
}

// NewExtractor creates an Extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	x := &Extractor{
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract writes every entry of the archive below req.ExtractPath in the order
// they are stored. Entry names are sanitized, missing directories are created
// on demand and existing files are never overwritten. The first failure
// aborts; entries written before it stay on disk.
func (x *Extractor) Extract(ctx context.Context, req *model.ExtractRequest) (*model.ExtractResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := x.extract(ctx, req.ArchivePath, req.ExtractPath)
	if err != nil {
		x.metrics.ExtractFailed(types.KindOf(err))
		return nil, goerr.Wrap(err, "failed to extract archive",
			goerr.V("archive", req.ArchivePath),
			goerr.V("output", req.ExtractPath),
		)
	}

	x.metrics.ExtractCompleted(len(result.Files), result.Size)
	ctxlog.From(ctx).Info("Extracted archive",
		"archive", req.ArchivePath,
		"output", req.ExtractPath,
		"file_count", len(result.Files),
		"dir_count", len(result.Directories),
		"total_size_bytes", result.Size,
	)

	return result, nil
}

func (x *Extractor) extract(ctx context.Context, archivePath, outDir string) (*model.ExtractResult, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		tag := types.ErrTagArchive
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			tag = types.ErrTagFilesystem
		}
		return nil, goerr.Wrap(err, "failed to open archive", goerr.T(tag))
	}
	defer reader.Close()

	outDir = filepath.Clean(outDir)
	result := &model.ExtractResult{
		OutputDir:   outDir,
		Files:       []string{},
		Directories: []string{},
	}

	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "extraction cancelled")
		}

		if err := extractEntry(entry, outDir, result); err != nil {
			return nil, goerr.Wrap(err, "failed to extract entry", goerr.V("entry", entry.Name))
		}
	}

	return result, nil
}

func extractEntry(entry *zip.File, outDir string, result *model.ExtractResult) error {
	dest, err := safepath.Resolve(outDir, entry.Name)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(outDir, dest)
	if err != nil {
		return goerr.Wrap(err, "failed to compute relative path", goerr.T(types.ErrTagArchive))
	}

	if isDirEntry(entry) {
		if dest == outDir {
			return nil
		}
		// The directory may already exist when a file inside it came first.
		if err := ensureDir(dest); err != nil {
			return err
		}
		result.Directories = append(result.Directories, rel)
		return nil
	}

	if dest == outDir {
		return goerr.New("file entry has an empty name after sanitization", goerr.T(types.ErrTagArchive))
	}

	// Parents are missing when the archive has no directory entries or lists them after their files.
	if err := ensureDir(filepath.Dir(dest)); err != nil {
		return err
	}

	n, err := writeEntry(entry, dest)
	if err != nil {
		return err
	}

	result.Files = append(result.Files, rel)
	result.Size += n
	return nil
}

func isDirEntry(entry *zip.File) bool {
	return strings.HasSuffix(entry.Name, "/") ||
		strings.HasSuffix(entry.Name, `\`) ||
		entry.Mode().IsDir()
}

func ensureDir(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("path", path), goerr.T(types.ErrTagFilesystem))
	}
	return nil
}

func writeEntry(entry *zip.File, dest string) (int64, error) {
	rc, err := entry.Open()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to open entry", goerr.T(types.ErrTagArchive))
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create extracted file", goerr.V("path", dest), goerr.T(types.ErrTagFilesystem))
	}
	defer out.Close()

	src := &entryReader{r: rc}
	n, err := io.Copy(out, src)
	if err != nil {
		if src.err != nil {
			return n, goerr.Wrap(err, "failed to decompress entry", goerr.T(types.ErrTagArchive))
		}
		return n, goerr.Wrap(err, "failed to write extracted file", goerr.V("path", dest), goerr.T(types.ErrTagFilesystem))
	}

	if err := out.Close(); err != nil {
		return n, goerr.Wrap(err, "failed to close extracted file", goerr.V("path", dest), goerr.T(types.ErrTagFilesystem))
	}

	return n, nil
}

// entryReader remembers read failures so that a failed copy can be blamed on
// the archive or on the destination.
type entryReader struct {
	r   io.Reader
	err error
}

func (e *entryReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		e.err = err
	}
	return n, err
}
