package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"ScraperExtranet/internal/browser"
	"ScraperExtranet/internal/record"
)

// dumpPage writes the current document to dir for later inspection of a
// failed entry.
func dumpPage(ctx context.Context, d browser.Driver, dir string, id int, st record.Status) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	html, err := d.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%04d_%s.html", id, slug(string(st))))
	return path, os.WriteFile(path, []byte(html), 0o644)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if r > unicode.MaxASCII {
				r = '_'
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
