package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/romfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/romfetch/pkg/domain/model"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
	"github.com/m-mizutani/romfetch/pkg/utils/async"
)

const (
	// DefaultEmitInterval is the minimum time between two progress events of one download
	DefaultEmitInterval = 500 * time.Millisecond

	// DefaultMaxConcurrentDownloads is the number of downloads allowed to transfer at once
	DefaultMaxConcurrentDownloads = 4

	defaultChunkSize = 32 * 1024
)

// Downloader streams a remote file to disk and emits progress events
type Downloader struct {
	client       interfaces.HTTPClient
	emitters     []interfaces.EventEmitter
	metrics      interfaces.Metrics
	emitInterval time.Duration
	chunkSize    int
	userAgent    string
	now          func() time.Time
	slots        chan struct{}
}

// DownloaderOption configures Downloader
type DownloaderOption func(*Downloader)

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(client interfaces.HTTPClient) DownloaderOption {
	return func(d *Downloader) {
		d.client = client
	}
}

// WithEmitter adds event receivers. Every event is sent to all of them in order.
func WithEmitter(emitters ...interfaces.EventEmitter) DownloaderOption {
	return func(d *Downloader) {
		d.emitters = append(d.emitters, emitters...)
	}
}

// WithDownloadMetrics sets the metrics recorder
func WithDownloadMetrics(metrics interfaces.Metrics) DownloaderOption {
	return func(d *Downloader) {
		d.metrics = metrics
	}
}

// WithEmitInterval sets the minimum time between progress events
func WithEmitInterval(interval time.Duration) DownloaderOption {
	return func(d *Downloader) {
		d.emitInterval = interval
	}
}

// WithChunkSize sets the read buffer size. The transport may still deliver smaller chunks.
func WithChunkSize(size int) DownloaderOption {
	return func(d *Downloader) {
		if size > 0 {
			d.chunkSize = size
		}
	}
}

// WithUserAgent sets the User-Agent header of download requests
func WithUserAgent(ua string) DownloaderOption {
	return func(d *Downloader) {
		d.userAgent = ua
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) DownloaderOption {
	return func(d *Downloader) {
		d.now = now
	}
}

// WithMaxConcurrentDownloads limits how many downloads transfer at the same
// time. Zero or a negative value removes the limit.
func WithMaxConcurrentDownloads(n int) DownloaderOption {
	return func(d *Downloader) {
		if n > 0 {
			d.slots = make(chan struct{}, n)
		} else {
			d.slots = nil
		}
	}
}

// NewDownloader creates a Downloader
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client:       http.DefaultClient,
		metrics:      nopMetrics{},
		emitInterval: DefaultEmitInterval,
		chunkSize:    defaultChunkSize,
		userAgent:    types.AppName + "/" + types.Version,
		now:          time.Now,
		slots:        make(chan struct{}, DefaultMaxConcurrentDownloads),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start validates req and runs the download in a detached goroutine. Progress
// is only observable through the emitters; failures are logged.
func (d *Downloader) Start(ctx context.Context, req *model.DownloadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	job := *req
	ctxlog.From(ctx).Info("Download queued",
		"download_id", job.ID,
		"url", job.URL,
		"destination", job.Destination(),
	)

	async.Dispatch(ctx, func(ctx context.Context) error {
		return d.Run(ctx, &job)
	})

	return nil
}

// Run downloads req.URL to req.Destination() in the calling goroutine. On
// success it emits one final progress event and one complete event. On
// failure no complete event is emitted and a partially written file is left
// in place.
func (d *Downloader) Run(ctx context.Context, req *model.DownloadRequest) error {
	if d.slots != nil {
		select {
		case d.slots <- struct{}{}:
			defer func() { <-d.slots }()
		case <-ctx.Done():
			return goerr.Wrap(ctx.Err(), "download cancelled while waiting for a slot", goerr.V("download_id", req.ID))
		}
	}

	logger := ctxlog.From(ctx).With("download_id", req.ID)
	d.metrics.DownloadStarted()

	start := d.now()
	progress, err := d.transfer(ctx, req, start)
	if err != nil {
		d.metrics.DownloadFailed(types.KindOf(err))
		return goerr.Wrap(err, "download failed",
			goerr.V("download_id", req.ID),
			goerr.V("url", req.URL),
		)
	}

	elapsed := d.now().Sub(start)
	progress.Complete(elapsed)
	d.emit(ctx, model.EventDownloadProgress, progress)
	d.emit(ctx, model.EventDownloadComplete, progress)
	d.metrics.DownloadCompleted(progress.FileSize, elapsed)

	logger.Info("Download completed",
		"destination", req.Destination(),
		"filesize", progress.FileSize,
		"elapsed", elapsed,
	)
	return nil
}

func (d *Downloader) transfer(ctx context.Context, req *model.DownloadRequest, start time.Time) (*model.Progress, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.T(types.ErrTagInvalidInput))
	}
	httpReq.Header.Set("User-Agent", d.userAgent)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	// A transparently decompressed body loses its declared length.
	httpReq.Header.Set("Accept-Encoding", "identity")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to GET", goerr.T(types.ErrTagTransport))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.New("unexpected status code",
			goerr.V("status", resp.StatusCode),
			goerr.T(types.ErrTagTransport),
		)
	}
	if resp.ContentLength < 0 {
		return nil, goerr.New("response has no content length", goerr.T(types.ErrTagTransport))
	}

	dest := req.Destination()
	file, err := os.Create(dest)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create file", goerr.V("path", dest), goerr.T(types.ErrTagFilesystem))
	}
	defer file.Close()

	progress := model.NewProgress(req.ID, uint64(resp.ContentLength))
	lastEmit := start
	buf := make([]byte, d.chunkSize)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return nil, goerr.Wrap(err, "failed to write file", goerr.V("path", dest), goerr.T(types.ErrTagFilesystem))
			}

			now := d.now()
			progress.Advance(uint64(n), now.Sub(start))
			if now.Sub(lastEmit) >= d.emitInterval {
				d.emit(ctx, model.EventDownloadProgress, progress)
				lastEmit = now
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, goerr.Wrap(readErr, "failed to read response body", goerr.T(types.ErrTagTransport))
		}
	}

	if err := file.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close file", goerr.V("path", dest), goerr.T(types.ErrTagFilesystem))
	}

	return progress, nil
}

// emit sends a snapshot of p to all emitters. Emitter failures are logged
// and do not affect the download.
func (d *Downloader) emit(ctx context.Context, name model.EventName, p *model.Progress) {
	event := model.Event{Name: name, Payload: *p}
	for _, emitter := range d.emitters {
		if err := emitter.Emit(ctx, event); err != nil {
			ctxlog.From(ctx).Warn("Failed to emit event",
				"event", name,
				"download_id", p.DownloadID,
				"error", err,
			)
		}
	}
}
