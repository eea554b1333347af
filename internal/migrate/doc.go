// Package migrate orchestrates a full library migration run.
//
// A run holds an exclusive lock for its duration, walks the library root
// collecting directories in sorted order so collision counters are
// reproducible, then groups, parses, and places each directory's entries
// sequentially. Every per-entry outcome is aggregated into a Summary; a
// terminated run may leave a partially moved group, which is an accepted
// inconsistency window rather than a transactional guarantee.
package migrate
