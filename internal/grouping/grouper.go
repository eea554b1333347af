package grouping

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// TrickplaySuffix marks thumbnail-cache directories kept alongside a video.
	TrickplaySuffix = ".trickplay"
	// PosterSuffix marks poster images, before the image extension.
	PosterSuffix = "-poster"
)

// Entry is a single name inside a directory being scanned.
type Entry struct {
	Name  string
	IsDir bool
}

// Grouper buckets directory entries by base key and parses the keys into
// (year, title) pairs.
type Grouper struct {
	prefix       string
	targetSubdir string
	namePattern  *regexp.Regexp
}

// New constructs a Grouper for the given source prefix. targetSubdir is the
// migration output segment; directories carrying that name are never grouped
// so a re-run does not reprocess its own output.
func New(prefix, targetSubdir string) *Grouper {
	pattern := regexp.MustCompile(fmt.Sprintf(`(?i)^%s - S(\d{4})E\d+ - (.+)$`, regexp.QuoteMeta(prefix)))
	return &Grouper{
		prefix:       prefix,
		targetSubdir: targetSubdir,
		namePattern:  pattern,
	}
}

// Pattern returns the expected name pattern, for skip diagnostics.
func (g *Grouper) Pattern() string {
	return g.prefix + " - S<YYYY>E<NN> - <Title>"
}

// Group partitions entries into base-key buckets. Entries not starting with
// the configured prefix are excluded. When currentDirName equals the target
// subdirectory the result is empty.
func (g *Grouper) Group(entries []Entry, currentDirName string) map[string][]Entry {
	groups := make(map[string][]Entry)
	if currentDirName == g.targetSubdir {
		return groups
	}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name, g.prefix) {
			continue
		}
		key := BaseKey(entry)
		groups[key] = append(groups[key], entry)
	}
	return groups
}

// Parse matches a base key against the group naming pattern, yielding the
// 4-digit year and the trimmed title.
func (g *Grouper) Parse(baseKey string) (year, title string, ok bool) {
	match := g.namePattern.FindStringSubmatch(baseKey)
	if match == nil {
		return "", "", false
	}
	return match[1], strings.TrimSpace(match[2]), true
}

// BaseKey derives the group key for an entry. Trickplay directories carry no
// conventional extension, so their marker is stripped before the generic
// extension strip is considered.
func BaseKey(entry Entry) string {
	name := entry.Name
	if entry.IsDir && strings.HasSuffix(name, TrickplaySuffix) {
		name = name[:len(name)-len(TrickplaySuffix)]
	} else {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.TrimSuffix(name, PosterSuffix)
}

// Suffix returns the portion of the entry name beyond the base key. It is
// preserved byte for byte across the rename; ok is false when the entry name
// does not start with the key.
func Suffix(entry Entry, baseKey string) (string, bool) {
	if !strings.HasPrefix(entry.Name, baseKey) {
		return "", false
	}
	return entry.Name[len(baseKey):], true
}
