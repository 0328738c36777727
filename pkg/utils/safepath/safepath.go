package safepath

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
)

// maxComponentBytes is the common filename length limit of ext4, NTFS and APFS
const maxComponentBytes = 255

var (
	illegalChars    = regexp.MustCompile(`[/?<>\\:*|"]`)
	controlChars    = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
	dotsOnly        = regexp.MustCompile(`^\.+$`)
	windowsReserved = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	windowsTrailing = regexp.MustCompile(`[. ]+$`)
)

// SanitizeComponent makes a single path component safe to use as a file name.
// The result may be empty, in which case the component must be dropped.
func SanitizeComponent(s string) string {
	s = illegalChars.ReplaceAllString(s, "")
	s = controlChars.ReplaceAllString(s, "")
	s = dotsOnly.ReplaceAllString(s, "")
	s = windowsReserved.ReplaceAllString(s, "")
	s = windowsTrailing.ReplaceAllString(s, "")
	return truncate(s, maxComponentBytes)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Sanitize converts a stored archive name into a relative path. Both '/' and
// '\' separate components; every component is sanitized on its own and empty
// ones are dropped, so the result never contains "..", a volume name or a
// leading separator.
func Sanitize(name string) string {
	parts := strings.Split(strings.ReplaceAll(name, `\`, "/"), "/")

	components := make([]string, 0, len(parts))
	for _, part := range parts {
		if c := SanitizeComponent(part); c != "" {
			components = append(components, c)
		}
	}

	return filepath.Join(components...)
}

// Resolve joins the sanitized form of name to root. The returned path is root
// itself or a path below it.
func Resolve(root, name string) (string, error) {
	root = filepath.Clean(root)
	dest := filepath.Join(root, Sanitize(name))

	rel, err := filepath.Rel(root, dest)
	if err != nil || !filepath.IsLocal(rel) {
		return "", goerr.New("sanitized path escapes output directory",
			goerr.V("name", name),
			goerr.V("root", root),
			goerr.V("dest", dest),
			goerr.T(types.ErrTagArchive),
		)
	}

	return dest, nil
}
