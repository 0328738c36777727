package model

import (
	"net/url"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
	"github.com/m-mizutani/romfetch/pkg/utils/safepath"
)

// DownloadRequest describes one file to fetch
type DownloadRequest struct {
	ID        string            `json:"id"`
	URL       string            `json:"url"`
	Directory string            `json:"directory"`
	Filename  string            `json:"filename"`
	Headers   map[string]string `json:"headers,omitempty" masq:"secret"`
}

// Destination returns the path the file is written to
func (r *DownloadRequest) Destination() string {
	return filepath.Join(r.Directory, r.Filename)
}

// Validate checks the fields that can be checked without touching network or disk
func (r *DownloadRequest) Validate() error {
	if r.URL == "" {
		return goerr.New("url is required", goerr.T(types.ErrTagInvalidInput))
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return goerr.Wrap(err, "invalid url", goerr.V("url", r.URL), goerr.T(types.ErrTagInvalidInput))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return goerr.New("unsupported url scheme", goerr.V("scheme", u.Scheme), goerr.T(types.ErrTagInvalidInput))
	}

	if r.Directory == "" {
		return goerr.New("directory is required", goerr.T(types.ErrTagInvalidInput))
	}
	if r.Filename == "" {
		return goerr.New("filename is required", goerr.T(types.ErrTagInvalidInput))
	}
	if safepath.SanitizeComponent(r.Filename) != r.Filename {
		return goerr.New("filename contains reserved characters or path elements",
			goerr.V("filename", r.Filename),
			goerr.T(types.ErrTagInvalidInput),
		)
	}

	return nil
}
