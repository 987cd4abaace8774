// Package postprocess turns raw full transcripts into corrected text and a
// consolidated per-run keyword database.
package postprocess
