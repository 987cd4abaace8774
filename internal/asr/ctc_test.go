package asr

import (
	"context"
	"errors"
	"math"
	"testing"

	"yammer/internal/services"
)

// row builds a score row with the given symbol index peaked.
func row(size, peak int) []float32 {
	r := make([]float32, size)
	r[peak] = 1
	return r
}

func TestCTCDecodeCollapse(t *testing.T) {
	symbols := []string{"<pad>", "<s>", "|", "c", "a", "t"}
	model := &fakeCTCModel{
		info: Info{ID: "facebook/wav2vec2-base-960h", ParameterCount: 94_396_320, Symbols: symbols},
		logits: [][]float32{
			// "c c a <pad> t | t" collapses to "cat t".
			row(6, 3), row(6, 3), row(6, 4), row(6, 0), row(6, 5), row(6, 2), row(6, 5),
		},
	}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}

	got, err := dec.Decode(context.Background(), []float32{0.1, -0.2, 0.3}, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if got != "cat t" {
		t.Fatalf("got %q, want %q", got, "cat t")
	}
	if model.gotMask != nil {
		t.Fatal("base model must not pass an attention mask")
	}
}

func TestCTCDecodeRepeatedSymbolSurvivesBlank(t *testing.T) {
	symbols := []string{"<pad>", "|", "l", "o"}
	model := &fakeCTCModel{
		info: Info{ID: "facebook/wav2vec2-base-960h", Symbols: symbols},
		logits: [][]float32{
			// "l o <pad> o" must produce "loo": the blank separates a
			// genuine double letter.
			row(4, 2), row(4, 3), row(4, 0), row(4, 3),
		},
	}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := dec.Decode(context.Background(), []float32{0.5}, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if got != "loo" {
		t.Fatalf("got %q, want %q", got, "loo")
	}
}

func TestCTCDecodeMaskedVariant(t *testing.T) {
	symbols := []string{"<pad>", "|", "a"}
	model := &fakeCTCModel{
		info: Info{
			ID:             "facebook/wav2vec2-large-960h-lv60-self",
			ParameterCount: 315_471_520,
			Symbols:        symbols,
		},
		logits: [][]float32{row(3, 2)},
	}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}

	samples := []float32{0.1, 0.2, 0.3, 0.4}
	if _, err := dec.Decode(context.Background(), samples, 16000); err != nil {
		t.Fatal(err)
	}
	if len(model.gotMask) != len(samples) {
		t.Fatalf("mask length: got %d, want %d", len(model.gotMask), len(samples))
	}
	for i, v := range model.gotMask {
		if v != 1 {
			t.Fatalf("mask[%d] = %d, want 1", i, v)
		}
	}
}

func TestCTCDecodeEmptyChunk(t *testing.T) {
	model := &fakeCTCModel{
		info: Info{ID: "facebook/wav2vec2-base-960h", Symbols: []string{"<pad>", "a"}},
	}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := dec.Decode(context.Background(), nil, 16000)
	if err != nil {
		t.Fatalf("empty chunk must not error: %v", err)
	}
	if got != "" {
		t.Fatalf("empty chunk must yield empty fragment, got %q", got)
	}
	if model.gotMask != nil {
		t.Fatal("model must not be invoked for an empty chunk")
	}
}

func TestCTCDecodeModelFailure(t *testing.T) {
	model := &fakeCTCModel{
		info: Info{ID: "facebook/wav2vec2-base-960h", Symbols: []string{"<pad>", "a"}},
		err:  errors.New("device exploded"),
	}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = dec.Decode(context.Background(), []float32{0.1}, 16000)
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestCTCDecodeRowWidthMismatch(t *testing.T) {
	model := &fakeCTCModel{
		info:   Info{ID: "facebook/wav2vec2-base-960h", Symbols: []string{"<pad>", "a"}},
		logits: [][]float32{{0.1, 0.2, 0.3}},
	}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = dec.Decode(context.Background(), []float32{0.1}, 16000)
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode for mismatched row width, got %v", err)
	}
}

func TestEncodeInputValuesNormalizes(t *testing.T) {
	out := encodeInputValues([]float32{1, 2, 3, 4})

	var mean float64
	for _, v := range out {
		mean += float64(v)
	}
	mean /= float64(len(out))
	if math.Abs(mean) > 1e-5 {
		t.Fatalf("mean not ~0: %f", mean)
	}

	var variance float64
	for _, v := range out {
		variance += (float64(v) - mean) * (float64(v) - mean)
	}
	variance /= float64(len(out))
	if math.Abs(variance-1) > 1e-3 {
		t.Fatalf("variance not ~1: %f", variance)
	}
}
