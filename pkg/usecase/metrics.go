package usecase

import (
	"time"

	"github.com/m-mizutani/romfetch/pkg/domain/types"
)

type nopMetrics struct{}

func (nopMetrics) DownloadStarted() {}

func (nopMetrics) DownloadCompleted(uint64, time.Duration) {}

func (nopMetrics) DownloadFailed(types.ErrorKind) {}

func (nopMetrics) ExtractCompleted(int, int64) {}

func (nopMetrics) ExtractFailed(types.ErrorKind) {}
