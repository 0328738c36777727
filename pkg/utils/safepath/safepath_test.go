package safepath_test

import (
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/romfetch/pkg/utils/safepath"
)

func TestSanitizeComponent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain name", input: "readme.txt", want: "readme.txt"},
		{name: "current dir", input: ".", want: ""},
		{name: "parent dir", input: "..", want: ""},
		{name: "only dots", input: "....", want: ""},
		{name: "reserved characters", input: `a<b>c:d"e|f?g*h`, want: "abcdefgh"},
		{name: "control characters", input: "a\x00b\x1fc", want: "abc"},
		{name: "windows device name", input: "CON", want: ""},
		{name: "windows device name with extension", input: "lpt1.txt", want: ""},
		{name: "device-like prefix is kept", input: "console.log", want: "console.log"},
		{name: "trailing dots and spaces", input: "name. . ", want: "name"},
		{name: "dots inside name", input: "a..b", want: "a..b"},
		{name: "unicode", input: "ゲーム.bin", want: "ゲーム.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, safepath.SanitizeComponent(tt.input), tt.want)
		})
	}
}

func TestSanitizeComponent_Truncate(t *testing.T) {
	long := strings.Repeat("あ", 100) // 300 bytes
	got := safepath.SanitizeComponent(long)

	gt.True(t, len(got) <= 255)
	gt.Equal(t, got, strings.Repeat("あ", 85))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "nested path", input: "docs/img/logo.png", want: filepath.Join("docs", "img", "logo.png")},
		{name: "directory entry", input: "docs/", want: "docs"},
		{name: "backslash separators", input: `docs\img\logo.png`, want: filepath.Join("docs", "img", "logo.png")},
		{name: "parent traversal", input: "../../etc/passwd", want: filepath.Join("etc", "passwd")},
		{name: "traversal in the middle", input: "a/../../b", want: filepath.Join("a", "b")},
		{name: "absolute path", input: "/etc/passwd", want: filepath.Join("etc", "passwd")},
		{name: "windows volume", input: `C:\Windows\system32`, want: filepath.Join("C", "Windows", "system32")},
		{name: "redundant separators", input: "a//b///c", want: filepath.Join("a", "b", "c")},
		{name: "only traversal", input: "../..", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, safepath.Sanitize(tt.input), tt.want)
		})
	}
}

func TestResolve_StaysInsideRoot(t *testing.T) {
	root := t.TempDir()

	names := []string{
		"../outside.txt",
		"../../../../etc/passwd",
		"/absolute/file",
		`..\..\windows\win.ini`,
		`C:\boot.ini`,
		"a/b/../../../c",
		"./././x",
		"dir/..",
		"..",
		"",
	}

	for _, name := range names {
		dest, err := safepath.Resolve(root, name)
		gt.NoError(t, err)
		assertInside(t, root, dest)
	}
}

func TestResolve_RandomNames(t *testing.T) {
	root := t.TempDir()
	alphabet := []string{".", "..", "/", `\`, "a", "b", ":", "<", "*", " ", "C:", "con", "\x00"}
	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		var sb strings.Builder
		n := rnd.Intn(12)
		for j := 0; j < n; j++ {
			sb.WriteString(alphabet[rnd.Intn(len(alphabet))])
		}

		dest, err := safepath.Resolve(root, sb.String())
		gt.NoError(t, err)
		assertInside(t, root, dest)
	}
}

func assertInside(t *testing.T, root, dest string) {
	t.Helper()
	root = filepath.Clean(root)
	if dest != root && !strings.HasPrefix(dest, root+string(filepath.Separator)) {
		t.Errorf("resolved path %q is outside of %q", dest, root)
	}
}
