// Package logging configures the slog loggers used across shelver.
//
// It provides a console handler tuned for interactive runs (one line per
// event, component prefix, key=value attributes) and a JSON handler for
// machine consumption, plus small attribute helpers so call sites stay
// terse. Per-entry move, skip, and failure reporting all flows through
// these loggers.
package logging
