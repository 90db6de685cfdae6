package splitter

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	maxBaseNameLen = 100
	fallbackBase   = "converted_image"
)

var (
	// Characters the output filename may not contain: filesystem-reserved
	// punctuation, whitespace runs, and commas. Runs collapse to a single
	// underscore. Everything outside [A-Za-z0-9_-] is dropped afterwards.
	unsafeRuns  = regexp.MustCompile(`[<>:"/\\|?*\s,]+`)
	nonWordRuns = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	scoreRuns   = regexp.MustCompile(`_+`)
)

// SanitizeFilename converts an arbitrary source filename into a safe base
// name shared by every tile output of a run. It strips the extension,
// replaces unsafe characters with underscores, collapses repeats, trims,
// and truncates to a fixed maximum. Always returns a non-empty string;
// sanitizing an already-sanitized name returns it unchanged.
func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	base = unsafeRuns.ReplaceAllString(base, "_")
	base = nonWordRuns.ReplaceAllString(base, "")
	base = scoreRuns.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")

	if r := []rune(base); len(r) > maxBaseNameLen {
		base = strings.Trim(string(r[:maxBaseNameLen]), "_")
	}

	if base == "" {
		return fallbackBase
	}
	return base
}
