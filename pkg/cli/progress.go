package cli

import (
	"context"
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/m-mizutani/romfetch/pkg/domain/model"
)

// progressBars renders download events as terminal progress bars, one bar per download id
type progressBars struct {
	p    *mpb.Progress
	mu   sync.Mutex
	bars map[string]*mpb.Bar
}

func newProgressBars(ctx context.Context, w io.Writer) *progressBars {
	return &progressBars{
		p:    mpb.NewWithContext(ctx, mpb.WithOutput(w), mpb.WithWidth(48)),
		bars: make(map[string]*mpb.Bar),
	}
}

func (x *progressBars) bar(id string, size uint64) *mpb.Bar {
	x.mu.Lock()
	defer x.mu.Unlock()

	if bar, ok := x.bars[id]; ok {
		return bar
	}

	bar := x.p.AddBar(int64(size),
		mpb.PrependDecorators(
			decor.Name(id, decor.WC{C: decor.DindentRight | decor.DextraSpace}),
			decor.CountersKibiByte("% .1f / % .1f"),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
		),
	)
	x.bars[id] = bar
	return bar
}

// Emit implements interfaces.EventEmitter
func (x *progressBars) Emit(ctx context.Context, event model.Event) error {
	bar := x.bar(event.Payload.DownloadID, event.Payload.FileSize)

	switch event.Name {
	case model.EventDownloadProgress:
		bar.SetCurrent(int64(event.Payload.Transferred))
	case model.EventDownloadComplete:
		bar.SetTotal(-1, true)
	}
	return nil
}

// Abort removes the bar of a failed download
func (x *progressBars) Abort(id string) {
	x.mu.Lock()
	bar, ok := x.bars[id]
	x.mu.Unlock()

	if ok && !bar.Completed() {
		bar.Abort(false)
	}
}

// Wait blocks until every bar is rendered for the last time
func (x *progressBars) Wait() {
	x.p.Wait()
}
