// Package preflight verifies run prerequisites before any files move.
package preflight

import (
	"shelver/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all preflight checks for the given config against the
// effective library root.
func RunAll(cfg *config.Config, libraryRoot string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Library root", libraryRoot),
		CheckDiskSpace("Library free space", libraryRoot, cfg.Migration.MinFreeBytes),
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
