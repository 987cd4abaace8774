// Package textnorm provides the deterministic text passes shared by the
// pipeline: corpus normalization of joined transcript fragments, sentence
// splitting for line-by-line output, word tokenization reused by spell
// correction and keyword extraction, and filename sanitization.
package textnorm
