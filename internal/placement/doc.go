// Package placement moves parsed groups into their library destination.
//
// For each group it computes <root>/<year>/<subdir>/<Title (Year)>, bumps a
// collision counter until every member's target is free, then moves the
// members with their name suffixes preserved and patches NFO metadata to the
// resolved name. Failures are contained per entry; the rest of the group and
// the run continue.
package placement
