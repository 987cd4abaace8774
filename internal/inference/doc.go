// Package inference runs the per-file transcription loop: segment, decode
// chunks strictly in order, normalize, persist.
package inference
