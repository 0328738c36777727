package model

import (
	"math/bits"
	"time"
)

// Progress is the state of one download at a point in time. It is mutated by
// the download loop and emitted to listeners as a value snapshot.
type Progress struct {
	DownloadID   string  `json:"download_id"`
	FileSize     uint64  `json:"filesize"`
	Transferred  uint64  `json:"transferred"`
	TransferRate float64 `json:"transfer_rate"` // bytes per second, averaged since start
	Percentage   float64 `json:"percentage"`
}

// NewProgress creates a Progress with nothing transferred yet
func NewProgress(downloadID string, fileSize uint64) *Progress {
	return &Progress{
		DownloadID: downloadID,
		FileSize:   fileSize,
	}
}

// Advance adds n bytes to Transferred, never going past FileSize, and
// recomputes percentage and rate for the given elapsed time.
func (p *Progress) Advance(n uint64, elapsed time.Duration) {
	sum, carry := bits.Add64(p.Transferred, n, 0)
	if carry != 0 || sum > p.FileSize {
		sum = p.FileSize
	}
	p.Transferred = sum
	p.update(elapsed)
}

// Complete marks the download as finished
func (p *Progress) Complete(elapsed time.Duration) {
	p.Transferred = p.FileSize
	p.update(elapsed)
	p.Percentage = 100
}

func (p *Progress) update(elapsed time.Duration) {
	p.Percentage = percentage(p.Transferred, p.FileSize)

	if secs := elapsed.Seconds(); secs > 0 {
		p.TransferRate = float64(p.Transferred) / secs
	} else {
		p.TransferRate = 0
	}
}

// percentage returns floor(transferred*100/total) without overflowing.
// transferred must not exceed total.
func percentage(transferred, total uint64) float64 {
	if total == 0 {
		return 0
	}
	hi, lo := bits.Mul64(transferred, 100)
	q, _ := bits.Div64(hi, lo, total)
	return float64(q)
}
