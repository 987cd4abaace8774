package asr

import (
	"context"
	"errors"
	"testing"

	"yammer/internal/services"
)

type fakeCTCModel struct {
	info    Info
	logits  [][]float32
	err     error
	gotMask []int
}

func (m *fakeCTCModel) Info() Info { return m.info }

func (m *fakeCTCModel) Logits(_ context.Context, input []float32, mask []int) ([][]float32, error) {
	m.gotMask = mask
	if m.err != nil {
		return nil, m.err
	}
	return m.logits, nil
}

type fakeGenerativeModel struct {
	info         Info
	ids          []int
	text         string
	err          error
	gotDirective Directive
	gotFeatures  []float32
	gotMax       int
}

func (m *fakeGenerativeModel) Info() Info { return m.info }

func (m *fakeGenerativeModel) Generate(_ context.Context, features []float32, directive Directive, maxTokens int) ([]int, error) {
	m.gotFeatures = features
	m.gotDirective = directive
	m.gotMax = maxTokens
	if m.err != nil {
		return nil, m.err
	}
	return m.ids, nil
}

func (m *fakeGenerativeModel) DecodeTokens(_ context.Context, ids []int) (string, error) {
	return m.text, nil
}

func TestFamilyFor(t *testing.T) {
	cases := map[string]Family{
		"openai/whisper-base.en":                 FamilyWhisper,
		"OpenAI/Whisper-Large-V3":                FamilyWhisper,
		"facebook/hubert-large-ls960-ft":         FamilyHubert,
		"patrickvonplaten/wavlm-libri-clean":     FamilyWavLM,
		"facebook/wav2vec2-base-960h":            FamilyWav2Vec2,
		"somebody/entirely-unknown-model":        FamilyWav2Vec2,
		"facebook/wav2vec2-large-960h-lv60-self": FamilyWav2Vec2,
	}
	for id, want := range cases {
		if got := FamilyFor(id); got != want {
			t.Fatalf("FamilyFor(%q) = %s, want %s", id, got, want)
		}
	}
}

func TestNeedsAttentionMask(t *testing.T) {
	cases := []struct {
		family Family
		params int64
		want   bool
	}{
		{FamilyWav2Vec2, 94_396_320, false},
		{FamilyWav2Vec2, 315_471_520, true},
		// Closer to base than to large.
		{FamilyWav2Vec2, 120_000_000, false},
		// Closer to large than to base.
		{FamilyWav2Vec2, 300_000_000, true},
		// Exactly between rounds down to base.
		{FamilyWav2Vec2, (94_396_320 + 315_471_520) / 2, false},
		// Non-wav2vec2 families never mask, regardless of size.
		{FamilyHubert, 315_471_520, false},
		{FamilyWavLM, 400_000_000, false},
		{FamilyWhisper, 315_471_520, false},
	}
	for _, tc := range cases {
		if got := NeedsAttentionMask(tc.family, tc.params); got != tc.want {
			t.Fatalf("NeedsAttentionMask(%s, %d) = %v, want %v", tc.family, tc.params, got, tc.want)
		}
	}
}

func TestResolveSelectsGenerative(t *testing.T) {
	model := &fakeGenerativeModel{info: Info{ID: "openai/whisper-base.en"}}
	dec, err := Resolve(model, Directive{Language: "en", Task: "transcribe"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := dec.(*generativeDecoder); !ok {
		t.Fatalf("expected generative decoder, got %T", dec)
	}
}

func TestResolveSelectsCTCWithMask(t *testing.T) {
	model := &fakeCTCModel{info: Info{
		ID:             "facebook/wav2vec2-large-960h-lv60-self",
		ParameterCount: 315_471_520,
		Symbols:        []string{"<pad>", "|", "a"},
	}}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}
	ctc, ok := dec.(*ctcDecoder)
	if !ok {
		t.Fatalf("expected ctc decoder, got %T", dec)
	}
	if !ctc.useMask {
		t.Fatal("large wav2vec2 model should use attention mask")
	}
}

func TestResolveRejectsMismatchedCapability(t *testing.T) {
	// A whisper ID on a model that can only produce logits is a
	// configuration error surfaced at resolve time, not at decode time.
	model := &fakeCTCModel{info: Info{ID: "openai/whisper-base.en"}}
	if _, err := Resolve(model, Directive{}); err == nil {
		t.Fatal("expected resolve error")
	}
}

func TestResolveRejectsEmptySymbolTable(t *testing.T) {
	model := &fakeCTCModel{info: Info{ID: "facebook/wav2vec2-base-960h"}}
	_, err := Resolve(model, Directive{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for empty symbol table, got %v", err)
	}
}
