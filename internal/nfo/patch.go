// Package nfo patches title and year elements inside NFO sidecar files.
//
// The patch is a best-effort textual transform, not a structural XML parse:
// NFO files in scope are small and simple, and any malformed markup outside
// the title/year elements passes through untouched. The pure Patch function
// is the seam to swap in a real document parser without touching move
// orchestration.
package nfo

import (
	"log/slog"
	"os"
	"regexp"
	"strings"

	"shelver/internal/logging"
)

var (
	titlePattern = regexp.MustCompile(`(?i)(<title>)(.*?)(</title>)`)
	yearPattern  = regexp.MustCompile(`(?i)<year(?:\s+[^>]*)?(?:>.*?</year>|\s*/>)`)
)

// Patch rewrites every title element's inner text to newTitle and normalizes
// the year element (self-closing or with inner text) to contain newYear.
// The second return reports whether the content changed.
func Patch(content, newTitle, newYear string) (string, bool) {
	patched := titlePattern.ReplaceAllString(content, "${1}"+literalReplacement(newTitle)+"${3}")
	patched = yearPattern.ReplaceAllString(patched, "<year>"+literalReplacement(newYear)+"</year>")
	return patched, patched != content
}

// literalReplacement escapes $ so replacement text is never treated as a
// capture reference.
func literalReplacement(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

// Patcher applies Patch to files on disk.
type Patcher struct {
	logger *slog.Logger
	dryRun bool
}

// NewPatcher constructs a file patcher. In dry-run mode PatchFile performs no
// I/O and only logs the intended edit.
func NewPatcher(logger *slog.Logger, dryRun bool) *Patcher {
	return &Patcher{
		logger: logging.NewComponentLogger(logger, "nfo"),
		dryRun: dryRun,
	}
}

// PatchFile rewrites the title and year elements of the NFO at path. Errors
// are logged and swallowed: the file has already been moved, and a failed
// patch must never abort the caller. Returns whether the file was (or would
// be) modified.
func (p *Patcher) PatchFile(path, newTitle, newYear string) bool {
	if p.dryRun {
		p.logger.Info("would update nfo",
			logging.Args(
				logging.String("path", path),
				logging.String("title", newTitle),
				logging.String("year", newYear),
			)...)
		return true
	}

	content, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("nfo read failed", logging.Args(logging.String("path", path), logging.Error(err))...)
		return false
	}

	patched, changed := Patch(string(content), newTitle, newYear)
	if !changed {
		return false
	}

	if err := os.WriteFile(path, []byte(patched), 0o644); err != nil {
		p.logger.Warn("nfo write failed", logging.Args(logging.String("path", path), logging.Error(err))...)
		return false
	}
	p.logger.Info("updated nfo",
		logging.Args(
			logging.String("path", path),
			logging.String("title", newTitle),
			logging.String("year", newYear),
		)...)
	return true
}
