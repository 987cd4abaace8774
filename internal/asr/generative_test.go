package asr

import (
	"context"
	"errors"
	"testing"

	"yammer/internal/services"
)

func TestGenerativeDecode(t *testing.T) {
	model := &fakeGenerativeModel{
		info: Info{ID: "openai/whisper-base.en"},
		ids:  []int{5, 9, 2},
		text: "  hello there ",
	}
	dec, err := Resolve(model, Directive{Language: "en", Task: "transcribe"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := dec.Decode(context.Background(), []float32{0.1, 0.2}, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello there" {
		t.Fatalf("got %q", got)
	}
	if model.gotDirective.Language != "en" || model.gotDirective.Task != "transcribe" {
		t.Fatalf("directive not forwarded: %+v", model.gotDirective)
	}
	if model.gotMax != maxOutputTokens {
		t.Fatalf("max tokens: got %d, want %d", model.gotMax, maxOutputTokens)
	}
}

func TestGenerativeDecodeTruncatesInput(t *testing.T) {
	model := &fakeGenerativeModel{info: Info{ID: "openai/whisper-base.en"}, ids: []int{1}, text: "x"}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}

	rate := 16000
	long := make([]float32, (maxInputSeconds+5)*rate)
	if _, err := dec.Decode(context.Background(), long, rate); err != nil {
		t.Fatal(err)
	}
	if len(model.gotFeatures) != maxInputSeconds*rate {
		t.Fatalf("features not truncated: got %d samples", len(model.gotFeatures))
	}
}

func TestGenerativeDecodeEmptyChunk(t *testing.T) {
	model := &fakeGenerativeModel{info: Info{ID: "openai/whisper-base.en"}}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := dec.Decode(context.Background(), nil, 16000)
	if err != nil || got != "" {
		t.Fatalf("empty chunk: got %q, %v", got, err)
	}
	if model.gotFeatures != nil {
		t.Fatal("model must not be invoked for an empty chunk")
	}
}

func TestGenerativeDecodeNoTokens(t *testing.T) {
	model := &fakeGenerativeModel{info: Info{ID: "openai/whisper-base.en"}, ids: nil}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := dec.Decode(context.Background(), []float32{0.2}, 16000)
	if err != nil || got != "" {
		t.Fatalf("no generated tokens: got %q, %v", got, err)
	}
}

func TestGenerativeDecodeFailure(t *testing.T) {
	model := &fakeGenerativeModel{
		info: Info{ID: "openai/whisper-base.en"},
		err:  errors.New("generation stalled"),
	}
	dec, err := Resolve(model, Directive{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = dec.Decode(context.Background(), []float32{0.2}, 16000)
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}
