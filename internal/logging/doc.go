// Package logging assembles structured slog loggers and formatting helpers
// used across intake components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers plus standardized field keys so the
// watcher, registrar, and normalizer tag log lines consistently. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape and routing as the rest of the
// system.
package logging
