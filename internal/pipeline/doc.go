// Package pipeline drives a whole transcription run: preflight, media
// discovery and conversion, the per-file inference loop, and the
// postprocess stage.
package pipeline
