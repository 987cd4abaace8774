package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upperCaser = cases.Upper(language.English)

// Normalize applies the corpus-level normalization pass to joined transcript
// fragments: whitespace runs collapse to single spaces, space before
// closing punctuation is removed, and sentence-initial letters are
// capitalized. The pass is deterministic and idempotent.
func Normalize(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	joined := strings.Join(fields, " ")

	// " word ." -> " word."
	for _, p := range []string{".", ",", "!", "?", ";", ":"} {
		joined = strings.ReplaceAll(joined, " "+p, p)
	}

	return capitalizeSentences(joined)
}

func capitalizeSentences(text string) string {
	runes := []rune(text)
	atStart := true
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if atStart && unicode.IsLetter(r) {
			up := []rune(upperCaser.String(string(r)))
			if len(up) == 1 {
				runes[i] = up[0]
			}
			atStart = false
			continue
		}
		switch r {
		case '.', '!', '?':
			atStart = true
		default:
			if !unicode.IsSpace(r) && atStart && !unicode.IsPunct(r) {
				atStart = false
			}
		}
	}
	return string(runes)
}

// SplitSentences breaks normalized text into one sentence per element,
// splitting after terminal punctuation. Text without terminal punctuation
// comes back as a single sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var (
		sentences []string
		start     int
	)
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Consume runs of terminal punctuation ("?!", "...").
		if i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// Tokenize lowercases text and splits it into word tokens, dropping
// punctuation. Apostrophes inside words are kept ("don't").
func Tokenize(text string) []string {
	var (
		tokens []string
		b      strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, strings.Trim(b.String(), "'"))
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	out := tokens[:0]
	for _, tok := range tokens {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
