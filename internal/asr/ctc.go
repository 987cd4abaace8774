package asr

import (
	"context"
	"fmt"
	"math"
	"strings"

	"yammer/internal/services"
)

// Symbol-table conventions of the CTC checkpoints: the pad symbol doubles as
// the CTC blank, and the word delimiter maps to a space.
const (
	blankSymbol     = "<pad>"
	delimiterSymbol = "|"
)

// ctcDecoder implements the arg-max CTC strategy: encode samples, obtain
// per-timestep logits, take the highest-probability symbol at each step, and
// collapse the symbol sequence through the model's symbol table. Beam search
// is never used.
type ctcDecoder struct {
	model    CTCModel
	family   Family
	useMask  bool
	symbols  []string
	blankIdx int
}

func newCTCDecoder(model CTCModel, family Family, useMask bool) *ctcDecoder {
	symbols := model.Info().Symbols
	blankIdx := 0
	for i, sym := range symbols {
		if sym == blankSymbol {
			blankIdx = i
			break
		}
	}
	return &ctcDecoder{
		model:    model,
		family:   family,
		useMask:  useMask,
		symbols:  symbols,
		blankIdx: blankIdx,
	}
}

func (d *ctcDecoder) Description() string {
	desc := fmt.Sprintf("%s (%s", VariantCTC, d.family)
	if d.useMask {
		desc += ", attention mask"
	}
	return desc + ")"
}

func (d *ctcDecoder) Decode(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	inputValues := encodeInputValues(samples)
	var mask []int
	if d.useMask {
		mask = make([]int, len(inputValues))
		for i := range mask {
			mask[i] = 1
		}
	}

	logits, err := d.model.Logits(ctx, inputValues, mask)
	if err != nil {
		return "", services.Wrap(services.ErrDecode, "asr", "ctc logits", "", err)
	}

	ids := make([]int, 0, len(logits))
	for t, row := range logits {
		if len(row) != len(d.symbols) {
			return "", services.Wrap(services.ErrDecode, "asr", "ctc logits",
				fmt.Sprintf("timestep %d has %d scores for %d symbols", t, len(row), len(d.symbols)), nil)
		}
		ids = append(ids, argmax(row))
	}

	return d.collapse(ids), nil
}

// collapse applies standard CTC reduction: merge repeated symbols, drop
// blanks, then map the survivors through the symbol table.
func (d *ctcDecoder) collapse(ids []int) string {
	var b strings.Builder
	prev := -1
	for _, id := range ids {
		if id == prev {
			continue
		}
		prev = id
		if id == d.blankIdx {
			continue
		}
		sym := d.symbols[id]
		switch {
		case sym == delimiterSymbol:
			b.WriteByte(' ')
		case strings.HasPrefix(sym, "<") && strings.HasSuffix(sym, ">"):
			// Control symbols other than blank carry no text.
		default:
			b.WriteString(sym)
		}
	}
	return strings.TrimSpace(b.String())
}

// encodeInputValues applies the fixed-size feature encoding the CTC models
// expect: zero-mean, unit-variance normalization of the raw samples.
func encodeInputValues(samples []float32) []float32 {
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, s := range samples {
		d := float64(s) - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	scale := 1 / math.Sqrt(variance+1e-7)

	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32((float64(s) - mean) * scale)
	}
	return out
}

func argmax(row []float32) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}
