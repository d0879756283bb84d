// Package logging assembles the structured slog loggers used across the
// pipeline. It owns the console and JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so stage code
// automatically tags log lines with the run id, stage, and provider.
// Prefer these constructors over hand-rolled slog setup.
package logging
