package asr

import (
	"context"
	"fmt"
	"strings"

	"yammer/internal/services"
)

const (
	// maxInputSeconds bounds the feature window fed to generative models;
	// the segmenter keeps chunks at or under this length, longer input is
	// truncated.
	maxInputSeconds = 30
	// maxOutputTokens caps autoregressive generation per chunk.
	maxOutputTokens = 512
)

// generativeDecoder implements the sequence-to-sequence strategy: truncate
// features to the model's input window, generate token ids under a fixed
// language/task directive, and decode them with special tokens stripped.
type generativeDecoder struct {
	model     GenerativeModel
	directive Directive
}

func newGenerativeDecoder(model GenerativeModel, directive Directive) *generativeDecoder {
	return &generativeDecoder{model: model, directive: directive}
}

func (d *generativeDecoder) Description() string {
	return fmt.Sprintf("%s (%s/%s)", VariantGenerative, d.directive.Language, d.directive.Task)
}

func (d *generativeDecoder) Decode(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	features := samples
	if limit := maxInputSeconds * sampleRate; len(features) > limit {
		features = features[:limit]
	}

	ids, err := d.model.Generate(ctx, features, d.directive, maxOutputTokens)
	if err != nil {
		return "", services.Wrap(services.ErrDecode, "asr", "generate", "", err)
	}
	if len(ids) == 0 {
		return "", nil
	}

	text, err := d.model.DecodeTokens(ctx, ids)
	if err != nil {
		return "", services.Wrap(services.ErrDecode, "asr", "decode tokens", "", err)
	}
	return strings.TrimSpace(text), nil
}
