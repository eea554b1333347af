package placement

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shelver/internal/fileutil"
	"shelver/internal/grouping"
	"shelver/internal/logging"
	"shelver/internal/nfo"
	"shelver/internal/services"
)

const nfoExtension = ".nfo"

// Status classifies the outcome of a single entry move.
type Status int

const (
	StatusMoved Status = iota
	StatusWouldMove
	StatusFailed
)

// Outcome reports what happened to one group member.
type Outcome struct {
	Entry   grouping.Entry
	Target  string
	Status  Status
	Err     error
	Patched bool
}

// Placer moves groups into the library destination layout.
type Placer struct {
	libraryRoot  string
	targetSubdir string
	dryRun       bool
	logger       *slog.Logger
	patcher      *nfo.Patcher
}

// New constructs a Placer rooted at libraryRoot. In dry-run mode collision
// probing still reads the filesystem but nothing is created, moved, or
// patched.
func New(libraryRoot, targetSubdir string, dryRun bool, logger *slog.Logger) *Placer {
	return &Placer{
		libraryRoot:  libraryRoot,
		targetSubdir: targetSubdir,
		dryRun:       dryRun,
		logger:       logging.NewComponentLogger(logger, "placer"),
		patcher:      nfo.NewPatcher(logger, dryRun),
	}
}

type member struct {
	entry      grouping.Entry
	suffix     string
	sourcePath string
}

// Place moves every member of the group from sourceDir into the resolved
// destination directory. The returned outcomes cover each member, including
// per-entry failures that did not stop the rest of the group.
func (p *Placer) Place(group []grouping.Entry, baseKey, year, title, sourceDir string) []Outcome {
	outcomes := make([]Outcome, 0, len(group))

	members := make([]member, 0, len(group))
	for _, entry := range group {
		suffix, ok := grouping.Suffix(entry, baseKey)
		if !ok {
			// Grouping guarantees this; guard against it anyway so a bad
			// entry cannot derail the rest of the group.
			outcomes = append(outcomes, Outcome{
				Entry:  entry,
				Status: StatusFailed,
				Err:    services.Wrap(services.ErrValidation, "placing", "derive suffix", fmt.Sprintf("entry %q does not extend base key %q", entry.Name, baseKey), nil),
			})
			continue
		}
		source, err := filepath.Abs(filepath.Join(sourceDir, entry.Name))
		if err != nil {
			outcomes = append(outcomes, Outcome{
				Entry:  entry,
				Status: StatusFailed,
				Err:    services.Wrap(services.ErrTransient, "placing", "resolve source", entry.Name, err),
			})
			continue
		}
		members = append(members, member{entry: entry, suffix: suffix, sourcePath: source})
	}

	candidate, destDir := p.resolveCollisions(members, year, title)

	if !p.dryRun {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			wrapped := services.Wrap(services.ErrTransient, "placing", "create destination", destDir, err)
			p.logger.Error("destination creation failed", logging.Args(logging.String("dest", destDir), logging.Error(err))...)
			for _, m := range members {
				outcomes = append(outcomes, Outcome{Entry: m.entry, Target: filepath.Join(destDir, candidate+m.suffix), Status: StatusFailed, Err: wrapped})
			}
			return outcomes
		}
	}

	for _, m := range members {
		targetName := candidate + m.suffix
		targetPath := filepath.Join(destDir, targetName)

		if p.dryRun {
			p.logger.Info("would move", logging.Args(logging.String("from", m.entry.Name), logging.String("to", targetPath))...)
			outcome := Outcome{Entry: m.entry, Target: targetPath, Status: StatusWouldMove}
			if strings.HasSuffix(targetName, nfoExtension) {
				outcome.Patched = p.patcher.PatchFile(targetPath, candidate, year)
			}
			outcomes = append(outcomes, outcome)
			continue
		}

		p.logger.Info("moving", logging.Args(logging.String("from", m.entry.Name), logging.String("to", targetPath))...)
		if err := fileutil.MoveFile(m.sourcePath, targetPath); err != nil {
			p.logger.Error("move failed", logging.Args(logging.String("entry", m.entry.Name), logging.Error(err))...)
			outcomes = append(outcomes, Outcome{
				Entry:  m.entry,
				Target: targetPath,
				Status: StatusFailed,
				Err:    services.Wrap(services.ErrTransient, "placing", "move entry", m.entry.Name, err),
			})
			continue
		}

		outcome := Outcome{Entry: m.entry, Target: targetPath, Status: StatusMoved}
		if strings.HasSuffix(targetName, nfoExtension) {
			outcome.Patched = p.patcher.PatchFile(targetPath, candidate, year)
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// resolveCollisions finds the lowest-numbered candidate name under which no
// member's target path collides with a pre-existing, non-self file. The
// destination directory embeds the candidate name, so it is recomputed per
// attempt; the whole group always lands under one consistent name.
func (p *Placer) resolveCollisions(members []member, year, title string) (candidate, destDir string) {
	base := fmt.Sprintf("%s (%s)", title, year)
	candidate = base
	for counter := 1; ; counter++ {
		if counter > 1 {
			candidate = fmt.Sprintf("%s (%d)", base, counter)
		}
		destDir = filepath.Join(p.libraryRoot, year, p.targetSubdir, candidate)

		collision := false
		for _, m := range members {
			proposed := filepath.Join(destDir, candidate+m.suffix)
			if _, err := os.Stat(proposed); err != nil {
				continue
			}
			// A proposed path that is the member's own source is a
			// re-run over already-placed files, not a collision.
			if abs, err := filepath.Abs(proposed); err == nil && abs == m.sourcePath {
				continue
			}
			collision = true
			break
		}
		if !collision {
			return candidate, destDir
		}
	}
}
