package migrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"shelver/internal/config"
	"shelver/internal/grouping"
	"shelver/internal/logging"
	"shelver/internal/placement"
	"shelver/internal/services"
)

const lockFileName = "shelver.lock"

// Options describe a single migration run.
type Options struct {
	LibraryRoot   string
	TargetSubdir  string
	OriginalGroup string
	DryRun        bool
	ShowProgress  bool
}

// Summary aggregates per-entry outcomes across the whole run.
type Summary struct {
	RunID         string
	DirsScanned   int
	Groups        int
	SkippedGroups int
	Moved         int
	WouldMove     int
	Failed        int
	Patched       int
}

// Runner drives grouping and placement over the library tree.
type Runner struct {
	cfg     *config.Config
	opts    Options
	logger  *slog.Logger
	grouper *grouping.Grouper
	placer  *placement.Placer
}

// NewRunner validates the options and wires the run's collaborators.
func NewRunner(cfg *config.Config, opts Options, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "migrating", "validate options", "configuration unavailable", nil)
	}
	if strings.TrimSpace(opts.LibraryRoot) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "migrating", "validate options", "library root not configured", nil)
	}
	if strings.TrimSpace(opts.TargetSubdir) == "" {
		return nil, services.Wrap(services.ErrValidation, "migrating", "validate options", "target subdirectory must be set", nil)
	}
	if strings.TrimSpace(opts.OriginalGroup) == "" {
		return nil, services.Wrap(services.ErrValidation, "migrating", "validate options", "original group prefix must be set", nil)
	}

	root, err := config.ExpandPath(opts.LibraryRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "migrating", "resolve library root", opts.LibraryRoot, err)
	}
	opts.LibraryRoot = root

	runLogger := logging.NewComponentLogger(logger, "migrate")
	return &Runner{
		cfg:     cfg,
		opts:    opts,
		logger:  runLogger,
		grouper: grouping.New(opts.OriginalGroup, opts.TargetSubdir),
		placer:  placement.New(root, opts.TargetSubdir, opts.DryRun, logger),
	}, nil
}

// Run executes the migration. The run lock makes the exclusive-access
// assumption explicit: a second concurrent run fails fast instead of racing
// the first over the same tree.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	lock := flock.New(filepath.Join(r.cfg.Paths.LogDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "migrating", "acquire lock", "unable to acquire run lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "migrating", "acquire lock", "another shelver run is already in progress", nil)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("failed to release run lock", logging.Args(logging.Error(unlockErr))...)
		}
	}()

	logger.Info("starting migration",
		logging.Args(
			logging.String("library_root", r.opts.LibraryRoot),
			logging.String("target_subdir", r.opts.TargetSubdir),
			logging.String("original_group", r.opts.OriginalGroup),
			logging.Bool("dry_run", r.opts.DryRun),
		)...)

	dirs, err := r.collectDirectories()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "migrating", "walk library", r.opts.LibraryRoot, err)
	}

	var bar *progressbar.ProgressBar
	if r.opts.ShowProgress && len(dirs) > 0 {
		bar = progressbar.NewOptions(len(dirs),
			progressbar.OptionSetDescription("Scanning directories"),
			progressbar.OptionSetWidth(50),
			progressbar.OptionShowCount(),
		)
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		r.processDirectory(logger, dir, summary)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	logger.Info("migration finished",
		logging.Args(
			logging.Int("dirs_scanned", summary.DirsScanned),
			logging.Int("groups", summary.Groups),
			logging.Int("skipped", summary.SkippedGroups),
			logging.Int("moved", summary.Moved),
			logging.Int("would_move", summary.WouldMove),
			logging.Int("failed", summary.Failed),
			logging.Int("patched", summary.Patched),
		)...)
	return summary, nil
}

// collectDirectories snapshots the directory list up front, sorted, so that
// moves performed mid-run never disturb the traversal and collision counters
// stay reproducible across runs over the same tree.
func (r *Runner) collectDirectories() ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(r.opts.LibraryRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (r *Runner) processDirectory(logger *slog.Logger, dir string, summary *Summary) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		// Trickplay directories moved earlier in the run vanish from their
		// old location before the snapshot reaches them.
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		logger.Warn("directory read failed", logging.Args(logging.String(logging.FieldDirectory, dir), logging.Error(err))...)
		return
	}
	summary.DirsScanned++

	entries := make([]grouping.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entries = append(entries, grouping.Entry{Name: de.Name(), IsDir: de.IsDir()})
	}

	groups := r.grouper.Group(entries, filepath.Base(dir))
	if len(groups) == 0 {
		return
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		year, title, ok := r.grouper.Parse(key)
		if !ok {
			logger.Info("skipping group: name does not match pattern",
				logging.Args(
					logging.String(logging.FieldBaseKey, key),
					logging.String("expected", r.grouper.Pattern()),
				)...)
			summary.SkippedGroups++
			continue
		}

		summary.Groups++
		outcomes := r.placer.Place(groups[key], key, year, title, dir)
		for _, outcome := range outcomes {
			switch outcome.Status {
			case placement.StatusMoved:
				summary.Moved++
			case placement.StatusWouldMove:
				summary.WouldMove++
			case placement.StatusFailed:
				summary.Failed++
			}
			if outcome.Patched {
				summary.Patched++
			}
		}
	}
}
