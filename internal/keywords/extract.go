package keywords

import (
	"math"
	"sort"
	"strings"

	_ "embed"

	"yammer/internal/textnorm"
)

//go:embed stopwords.txt
var stopwordData string

var stopwords = loadStopwords()

func loadStopwords() map[string]bool {
	set := make(map[string]bool)
	for _, line := range strings.Split(stopwordData, "\n") {
		word := strings.TrimSpace(line)
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		set[strings.ToLower(word)] = true
	}
	return set
}

// ScoredKeyword is one extracted phrase with its statistical score. Lower
// scores mean more salient phrases.
type ScoredKeyword struct {
	Keyword string
	Score   float64
}

type termStats struct {
	frequency int
	firstPos  int
	sentences map[int]bool
}

// Extract returns the topN most salient n-grams (n up to maxNgram) of text,
// scored by frequency, first-occurrence position, and sentence spread.
// Candidates never start, end, or contain a stopword. Ordering is stable:
// ascending score, then alphabetical.
func Extract(text string, topN, maxNgram int) []ScoredKeyword {
	if topN <= 0 || maxNgram <= 0 {
		return nil
	}
	sentences := textnorm.SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	stats := make(map[string]*termStats)
	var tokenized [][]string
	position := 0
	for si, sentence := range sentences {
		tokens := textnorm.Tokenize(sentence)
		tokenized = append(tokenized, tokens)
		for _, tok := range tokens {
			st := stats[tok]
			if st == nil {
				st = &termStats{firstPos: position, sentences: make(map[int]bool)}
				stats[tok] = st
			}
			st.frequency++
			st.sentences[si] = true
			position++
		}
	}
	if len(stats) == 0 {
		return nil
	}

	maxFreq := 0
	for _, st := range stats {
		if st.frequency > maxFreq {
			maxFreq = st.frequency
		}
	}
	score := func(term string) float64 {
		st := stats[term]
		positional := math.Log(2 + float64(st.firstPos))
		frequency := float64(st.frequency) / float64(maxFreq)
		spread := float64(len(st.sentences)) / float64(len(sentences))
		return positional / (frequency * (1 + spread))
	}

	candidateFreq := make(map[string]int)
	candidateScore := make(map[string]float64)
	for _, tokens := range tokenized {
		for n := 1; n <= maxNgram; n++ {
			for i := 0; i+n <= len(tokens); i++ {
				gram := tokens[i : i+n]
				if containsStopword(gram) {
					continue
				}
				phrase := strings.Join(gram, " ")
				candidateFreq[phrase]++
				if _, seen := candidateScore[phrase]; !seen {
					product := 1.0
					sum := 0.0
					for _, term := range gram {
						s := score(term)
						product *= s
						sum += s
					}
					candidateScore[phrase] = product / (1 + sum)
				}
			}
		}
	}

	out := make([]ScoredKeyword, 0, len(candidateScore))
	for phrase, base := range candidateScore {
		out = append(out, ScoredKeyword{
			Keyword: phrase,
			Score:   base / float64(candidateFreq[phrase]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Keyword < out[j].Keyword
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func containsStopword(gram []string) bool {
	for _, term := range gram {
		if stopwords[term] || len(term) < 2 {
			return true
		}
	}
	return false
}
