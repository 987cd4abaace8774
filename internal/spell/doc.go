// Package spell provides the run-scoped spell-correction chain: an
// exec-backed neural corrector that degrades to an in-process
// edit-distance corrector when unavailable.
package spell
