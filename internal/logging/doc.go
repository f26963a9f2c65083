// Package logging sets up the structured slog logger used by relterms.
//
// Console output is human-readable text on a terminal and JSON otherwise.
// When a log file is configured, JSON lines are also written to a size-rotated
// file under the data directory, which `relterms logs` can tail and follow.
package logging
