// Package logging assembles structured slog loggers and formatting helpers used
// across the AGORA client.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so comparison code can tag log
// lines with the run identifier and program being evaluated. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Logs default to stderr so command output on stdout stays machine-readable.
package logging
