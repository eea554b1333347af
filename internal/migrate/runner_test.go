package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"

	"github.com/gofrs/flock"

	"shelver/internal/config"
	"shelver/internal/logging"
	"shelver/internal/migrate"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	return &cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newRunner(t *testing.T, cfg *config.Config, opts migrate.Options) *migrate.Runner {
	t.Helper()
	runner, err := migrate.NewRunner(cfg, opts, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return runner
}

func seedLibrary(t *testing.T, root string) string {
	t.Helper()
	sourceDir := filepath.Join(root, "incoming")
	writeFile(t, filepath.Join(sourceDir, "Home - S2021E01 - Birthday Party.mp4"), "video")
	writeFile(t, filepath.Join(sourceDir, "Home - S2021E01 - Birthday Party-poster.jpg"), "poster")
	writeFile(t, filepath.Join(sourceDir, "Home - S2021E01 - Birthday Party.nfo"), "<title>Home - S2021E01 - Birthday Party</title><year/>")
	if err := os.MkdirAll(filepath.Join(sourceDir, "Home - S2021E01 - Birthday Party.trickplay"), 0o755); err != nil {
		t.Fatalf("mkdir trickplay: %v", err)
	}
	return sourceDir
}

func TestRunMigratesFlatGroup(t *testing.T) {
	cfg := newTestConfig(t)
	root := cfg.Paths.LibraryDir
	seedLibrary(t, root)

	runner := newRunner(t, cfg, migrate.Options{
		LibraryRoot:   root,
		TargetSubdir:  "Videos",
		OriginalGroup: "Home",
	})

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Groups != 1 || summary.Moved != 4 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Patched != 1 {
		t.Fatalf("expected one patched nfo, got %d", summary.Patched)
	}

	destDir := filepath.Join(root, "2021", "Videos", "Birthday Party (2021)")
	for _, name := range []string{
		"Birthday Party (2021).mp4",
		"Birthday Party (2021)-poster.jpg",
		"Birthday Party (2021).nfo",
		"Birthday Party (2021).trickplay",
	} {
		if _, err := os.Stat(filepath.Join(destDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	content, err := os.ReadFile(filepath.Join(destDir, "Birthday Party (2021).nfo"))
	if err != nil {
		t.Fatalf("read nfo: %v", err)
	}
	want := "<title>Birthday Party (2021)</title><year>2021</year>"
	if string(content) != want {
		t.Fatalf("nfo content = %q, want %q", content, want)
	}
}

func TestRunSkipsUnparsableGroups(t *testing.T) {
	cfg := newTestConfig(t)
	root := cfg.Paths.LibraryDir
	writeFile(t, filepath.Join(root, "incoming", "Home - ClipWithoutYear.mp4"), "video")

	runner := newRunner(t, cfg, migrate.Options{
		LibraryRoot:   root,
		TargetSubdir:  "Videos",
		OriginalGroup: "Home",
	})

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.SkippedGroups != 1 || summary.Moved != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(root, "incoming", "Home - ClipWithoutYear.mp4")); err != nil {
		t.Fatalf("skipped file must stay in place: %v", err)
	}
}

func TestRunIgnoresForeignPrefixes(t *testing.T) {
	cfg := newTestConfig(t)
	root := cfg.Paths.LibraryDir
	writeFile(t, filepath.Join(root, "incoming", "Random - S2021E01 - Clip.mp4"), "video")

	runner := newRunner(t, cfg, migrate.Options{
		LibraryRoot:   root,
		TargetSubdir:  "Videos",
		OriginalGroup: "Home",
	})

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Groups != 0 || summary.SkippedGroups != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(root, "incoming", "Random - S2021E01 - Clip.mp4")); err != nil {
		t.Fatalf("foreign-prefix file must stay untouched: %v", err)
	}
}

func TestRunDryRunLeavesTreeUntouched(t *testing.T) {
	cfg := newTestConfig(t)
	root := cfg.Paths.LibraryDir
	seedLibrary(t, root)
	before := snapshot(t, root)

	runner := newRunner(t, cfg, migrate.Options{
		LibraryRoot:   root,
		TargetSubdir:  "Videos",
		OriginalGroup: "Home",
		DryRun:        true,
	})

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.WouldMove != 4 || summary.Moved != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	after := snapshot(t, root)
	if len(before) != len(after) {
		t.Fatalf("dry run changed the tree: %v vs %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("dry run changed the tree: %q != %q", before[i], after[i])
		}
	}

	// A real run afterwards produces the migrated layout.
	realRunner := newRunner(t, cfg, migrate.Options{
		LibraryRoot:   root,
		TargetSubdir:  "Videos",
		OriginalGroup: "Home",
	})
	if _, err := realRunner.Run(context.Background()); err != nil {
		t.Fatalf("follow-up run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "2021", "Videos", "Birthday Party (2021)", "Birthday Party (2021).mp4")); err != nil {
		t.Fatalf("follow-up run did not migrate: %v", err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := newTestConfig(t)
	root := cfg.Paths.LibraryDir
	seedLibrary(t, root)

	opts := migrate.Options{
		LibraryRoot:   root,
		TargetSubdir:  "Videos",
		OriginalGroup: "Home",
	}

	if _, err := newRunner(t, cfg, opts).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	after := snapshot(t, root)

	summary, err := newRunner(t, cfg, opts).Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Moved != 0 || summary.Failed != 0 {
		t.Fatalf("second run summary = %+v", summary)
	}

	again := snapshot(t, root)
	if len(after) != len(again) {
		t.Fatalf("second run changed the tree: %v vs %v", after, again)
	}
	for i := range after {
		if after[i] != again[i] {
			t.Fatalf("second run changed the tree: %q != %q", after[i], again[i])
		}
	}
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	cfg := newTestConfig(t)
	root := cfg.Paths.LibraryDir
	seedLibrary(t, root)

	held := flock.New(filepath.Join(cfg.Paths.LogDir, "shelver.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("acquire test lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock() //nolint:errcheck

	runner := newRunner(t, cfg, migrate.Options{
		LibraryRoot:   root,
		TargetSubdir:  "Videos",
		OriginalGroup: "Home",
	})
	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected a held lock to refuse the run")
	}
}

func TestNewRunnerValidatesOptions(t *testing.T) {
	cfg := newTestConfig(t)
	cases := []migrate.Options{
		{TargetSubdir: "Videos", OriginalGroup: "Home"},
		{LibraryRoot: cfg.Paths.LibraryDir, OriginalGroup: "Home"},
		{LibraryRoot: cfg.Paths.LibraryDir, TargetSubdir: "Videos"},
	}
	for i, opts := range cases {
		if _, err := migrate.NewRunner(cfg, opts, logging.NewNop()); err == nil {
			t.Fatalf("case %d: expected option validation error", i)
		}
	}
}

func snapshot(t *testing.T, root string) []string {
	t.Helper()
	var entries []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			entries = append(entries, rel+"/")
		} else {
			entries = append(entries, rel+":"+strconv.FormatInt(info.Size(), 10))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	sort.Strings(entries)
	return entries
}
