package interfaces

import (
	"net/http"
	"time"

	"github.com/m-mizutani/romfetch/pkg/domain/types"
)

// HTTPClient is satisfied by *http.Client
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Metrics records operation outcomes
type Metrics interface {
	DownloadStarted()
	DownloadCompleted(bytes uint64, elapsed time.Duration)
	DownloadFailed(kind types.ErrorKind)
	ExtractCompleted(files int, bytes int64)
	ExtractFailed(kind types.ErrorKind)
}
