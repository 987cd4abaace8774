package spell

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	_ "embed"
)

//go:embed dictionary.txt
var defaultDictionary string

const editAlphabet = "abcdefghijklmnopqrstuvwxyz'"

// basicCorrector is the in-process fallback: unknown words are replaced by
// the highest-frequency dictionary word within edit distance one. Known
// words, short words, and words with digits pass through unchanged.
type basicCorrector struct {
	freq map[string]int
}

func newBasicCorrector(dictionaryPath string) (*basicCorrector, error) {
	source := defaultDictionary
	if dictionaryPath != "" {
		data, err := os.ReadFile(dictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("read dictionary: %w", err)
		}
		source = string(data)
	}
	freq, err := parseDictionary(source)
	if err != nil {
		return nil, err
	}
	return &basicCorrector{freq: freq}, nil
}

func parseDictionary(source string) (map[string]int, error) {
	freq := make(map[string]int)
	scanner := bufio.NewScanner(strings.NewReader(source))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		word := strings.ToLower(fields[0])
		count := 1
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				count = n
			}
		}
		freq[word] += count
	}
	if len(freq) == 0 {
		return nil, fmt.Errorf("frequency dictionary is empty")
	}
	return freq, nil
}

func (c *basicCorrector) size() int {
	return len(c.freq)
}

func (c *basicCorrector) Correct(ctx context.Context, text string) (string, error) {
	words := strings.Fields(text)
	for i, word := range words {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		words[i] = c.correctWord(word)
	}
	return strings.Join(words, " "), nil
}

func (c *basicCorrector) correctWord(word string) string {
	prefix, core, suffix := splitPunctuation(word)
	if core == "" {
		return word
	}
	lower := strings.ToLower(core)
	if len(lower) <= 2 || c.freq[lower] > 0 || strings.ContainsFunc(lower, unicode.IsDigit) {
		return word
	}
	best := c.bestCandidate(lower)
	if best == "" {
		return word
	}
	if unicode.IsUpper([]rune(core)[0]) {
		best = strings.ToUpper(best[:1]) + best[1:]
	}
	return prefix + best + suffix
}

func (c *basicCorrector) bestCandidate(word string) string {
	best := ""
	bestCount := 0
	for _, candidate := range edits1(word) {
		count := c.freq[candidate]
		if count > bestCount || (count == bestCount && count > 0 && candidate < best) {
			best = candidate
			bestCount = count
		}
	}
	return best
}

// edits1 generates every word at edit distance one: deletions, transpositions,
// replacements, and insertions over a lowercase alphabet.
func edits1(word string) []string {
	var out []string
	for i := 0; i <= len(word); i++ {
		left, right := word[:i], word[i:]
		if right != "" {
			out = append(out, left+right[1:])
		}
		if len(right) > 1 {
			out = append(out, left+string(right[1])+string(right[0])+right[2:])
		}
		for _, r := range editAlphabet {
			if right != "" {
				out = append(out, left+string(r)+right[1:])
			}
			out = append(out, left+string(r)+right)
		}
	}
	return out
}

func splitPunctuation(word string) (prefix, core, suffix string) {
	start := 0
	for start < len(word) && !isWordByte(word[start]) {
		start++
	}
	end := len(word)
	for end > start && !isWordByte(word[end-1]) {
		end--
	}
	return word[:start], word[start:end], word[end:]
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '\''
}
