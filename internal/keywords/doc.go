// Package keywords extracts salient phrases from transcripts and folds
// per-transcript keyword tables into the cross-file database.
package keywords
