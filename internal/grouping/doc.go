// Package grouping partitions directory entries into migration groups.
//
// Sibling files of one library item share a common base key: the entry name
// with its extension, trickplay-cache marker, or poster marker stripped. A
// group is every entry in one directory deriving the same base key; the
// group either parses into a (year, title) pair and migrates as a unit, or
// is skipped whole.
package grouping
