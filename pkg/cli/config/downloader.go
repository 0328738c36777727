package config

import (
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/romfetch/pkg/usecase"
)

// Downloader holds download tuning parameters
type Downloader struct {
	EmitInterval          time.Duration
	MaxConcurrent         int
	UserAgent             string
	ResponseHeaderTimeout time.Duration
	ChunkSize             int
}

// Flags returns CLI flags for downloader configuration
func (c *Downloader) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "emit-interval",
			Usage:       "Minimum interval between progress events of one download",
			Value:       usecase.DefaultEmitInterval,
			Destination: &c.EmitInterval,
			Sources:     cli.EnvVars("ROMFETCH_EMIT_INTERVAL"),
		},
		&cli.IntFlag{
			Name:        "max-concurrent-downloads",
			Usage:       "Number of downloads transferring at once (0 for unlimited)",
			Value:       usecase.DefaultMaxConcurrentDownloads,
			Destination: &c.MaxConcurrent,
			Sources:     cli.EnvVars("ROMFETCH_MAX_CONCURRENT_DOWNLOADS"),
		},
		&cli.StringFlag{
			Name:        "user-agent",
			Usage:       "User-Agent header of download requests",
			Destination: &c.UserAgent,
			Sources:     cli.EnvVars("ROMFETCH_USER_AGENT"),
		},
		&cli.DurationFlag{
			Name:        "response-header-timeout",
			Usage:       "Time to wait for the response headers of a download",
			Value:       30 * time.Second,
			Destination: &c.ResponseHeaderTimeout,
			Sources:     cli.EnvVars("ROMFETCH_RESPONSE_HEADER_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:        "chunk-size",
			Usage:       "Read buffer size in bytes",
			Value:       32 * 1024,
			Destination: &c.ChunkSize,
			Sources:     cli.EnvVars("ROMFETCH_CHUNK_SIZE"),
		},
	}
}

// Options converts the configuration into downloader options. The HTTP client
// never times out a whole transfer, only the wait for response headers.
func (c *Downloader) Options() []usecase.DownloaderOption {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = c.ResponseHeaderTimeout
	transport.DisableCompression = true

	opts := []usecase.DownloaderOption{
		usecase.WithHTTPClient(&http.Client{Transport: transport}),
		usecase.WithEmitInterval(c.EmitInterval),
		usecase.WithMaxConcurrentDownloads(c.MaxConcurrent),
		usecase.WithChunkSize(c.ChunkSize),
	}
	if c.UserAgent != "" {
		opts = append(opts, usecase.WithUserAgent(c.UserAgent))
	}
	return opts
}
