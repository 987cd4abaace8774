// Package runstore owns the on-disk layout of a transcription run:
// transcript files, the per-run metadata table, and the completed-source
// move.
package runstore
