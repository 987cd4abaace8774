// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source file names, and stage names
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into file-fatal, run-fatal, and recoverable categories.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
