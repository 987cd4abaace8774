package asr

import (
	"strings"

	"yammer/internal/services"
)

// Reference parameter counts for the wav2vec2 family, recorded by loading
// the published checkpoints. Whichever reference a model's count is closer
// to decides whether decoding must pass an attention mask.
const (
	wav2vec2BaseParams  = 94_396_320
	wav2vec2LargeParams = 315_471_520
)

// FamilyFor selects the model family from substrings of the model ID
// (case-insensitive). Unrecognized IDs default to the base wav2vec2 family.
func FamilyFor(modelID string) Family {
	id := strings.ToLower(modelID)
	switch {
	case strings.Contains(id, "whisper"):
		return FamilyWhisper
	case strings.Contains(id, "hubert"):
		return FamilyHubert
	case strings.Contains(id, "wavlm"):
		return FamilyWavLM
	default:
		return FamilyWav2Vec2
	}
}

// VariantFor maps a family to its decoding state machine.
func VariantFor(family Family) Variant {
	if family == FamilyWhisper {
		return VariantGenerative
	}
	return VariantCTC
}

// NeedsAttentionMask applies the parameter-count-distance rule: masking is
// required when the model's count is numerically closer to the large
// wav2vec2 reference than to the base one. Only the wav2vec2 family uses an
// attention mask; hubert and wavlm never do.
func NeedsAttentionMask(family Family, parameterCount int64) bool {
	if family != FamilyWav2Vec2 {
		return false
	}
	distBase := parameterCount - wav2vec2BaseParams
	if distBase < 0 {
		distBase = -distBase
	}
	distLarge := parameterCount - wav2vec2LargeParams
	if distLarge < 0 {
		distLarge = -distLarge
	}
	return distLarge < distBase
}

// Resolve selects the decoding strategy for a loaded model exactly once per
// run, so no per-chunk call site inspects model types or re-derives the
// masking flag.
func Resolve(model Model, directive Directive) (Decoder, error) {
	info := model.Info()
	family := FamilyFor(info.ID)

	switch VariantFor(family) {
	case VariantGenerative:
		gen, ok := model.(GenerativeModel)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "asr", "resolve",
				"model "+info.ID+" selected generative decoding but cannot generate", nil)
		}
		return newGenerativeDecoder(gen, directive), nil
	default:
		ctc, ok := model.(CTCModel)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "asr", "resolve",
				"model "+info.ID+" selected CTC decoding but exposes no logits", nil)
		}
		if len(info.Symbols) == 0 {
			return nil, services.Wrap(services.ErrConfiguration, "asr", "resolve",
				"model "+info.ID+" has an empty symbol table", nil)
		}
		mask := NeedsAttentionMask(family, info.ParameterCount)
		return newCTCDecoder(ctc, family, mask), nil
	}
}
