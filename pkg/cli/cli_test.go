package cli_test

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/romfetch/pkg/cli"
)

func TestRun_Extract(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "game.zip")
	f, err := os.Create(archive)
	gt.NoError(t, err)
	w := zip.NewWriter(f)
	entry, err := w.Create("roms/game.sfc")
	gt.NoError(t, err)
	_, err = entry.Write([]byte("cartridge"))
	gt.NoError(t, err)
	gt.NoError(t, w.Close())
	gt.NoError(t, f.Close())

	out := t.TempDir()
	gt.NoError(t, cli.Run(context.Background(), []string{
		"romfetch", "--log-level", "error",
		"extract", "--archive", archive, "--out", out,
	}))

	data, err := os.ReadFile(filepath.Join(out, "roms", "game.sfc"))
	gt.NoError(t, err)
	gt.Equal(t, string(data), "cartridge")
}

func TestRun_Download(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Token")
		_, _ = w.Write([]byte("rom image"))
	}))
	defer server.Close()

	dir := t.TempDir()
	gt.NoError(t, cli.Run(context.Background(), []string{
		"romfetch", "--log-level", "error",
		"download", "--url", server.URL + "/game.zip", "--dir", dir, "--filename", "game.zip",
		"--header", "X-Token=abc",
	}))

	data, err := os.ReadFile(filepath.Join(dir, "game.zip"))
	gt.NoError(t, err)
	gt.Equal(t, string(data), "rom image")
	gt.Equal(t, gotToken, "abc")
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "invalid log level",
			args: []string{"romfetch", "--log-level", "verbose", "extract", "--archive", "a.zip", "--out", "o"},
		},
		{
			name: "missing archive",
			args: []string{"romfetch", "--log-level", "error", "extract", "--archive", "does-not-exist.zip", "--out", "o"},
		},
		{
			name: "unsafe download filename",
			args: []string{"romfetch", "--log-level", "error", "download", "--url", "https://example.com/a", "--filename", "../a"},
		},
		{
			name: "malformed header",
			args: []string{"romfetch", "--log-level", "error", "download", "--url", "https://example.com/a", "--filename", "a", "--header", "novalue"},
		},
		{
			name: "missing job file",
			args: []string{"romfetch", "--log-level", "error", "batch", "--file", "does-not-exist.toml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Error(t, cli.Run(context.Background(), tt.args))
		})
	}
}

func TestRun_Batch(t *testing.T) {
	var zipBody []byte
	{
		path := filepath.Join(t.TempDir(), "src.zip")
		f, err := os.Create(path)
		gt.NoError(t, err)
		w := zip.NewWriter(f)
		entry, err := w.Create("docs/readme.txt")
		gt.NoError(t, err)
		_, err = entry.Write([]byte("read me"))
		gt.NoError(t, err)
		gt.NoError(t, w.Close())
		gt.NoError(t, f.Close())
		zipBody, err = os.ReadFile(path)
		gt.NoError(t, err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(zipBody)
	}))
	defer server.Close()

	dlDir := t.TempDir()
	outDir := t.TempDir()
	jobFile := filepath.Join(t.TempDir(), "jobs.toml")
	gt.NoError(t, os.WriteFile(jobFile, []byte(`
[[job]]
id = "docs"
url = "`+server.URL+`/docs.zip"
directory = "`+filepath.ToSlash(dlDir)+`"
filename = "docs.zip"
extract_to = "`+filepath.ToSlash(outDir)+`"
`), 0644))

	gt.NoError(t, cli.Run(context.Background(), []string{
		"romfetch", "--log-level", "error", "batch", "--file", jobFile,
	}))

	data, err := os.ReadFile(filepath.Join(outDir, "docs", "readme.txt"))
	gt.NoError(t, err)
	gt.Equal(t, string(data), "read me")
}
