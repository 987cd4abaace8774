// Package logging provides slog-based structured logging for the pipeline.
//
// Console output is a compact single-line format; JSON output is available
// for machine consumption. A rotated file sink under the configured log
// directory captures everything regardless of console level. Standardized
// field names (component, run_id, source, stage) keep records greppable
// across stages.
package logging
