package asr

import "context"

// Family identifies the acoustic model family selected by the model ID.
type Family string

const (
	FamilyWav2Vec2 Family = "wav2vec2"
	FamilyHubert   Family = "hubert"
	FamilyWavLM    Family = "wavlm"
	FamilyWhisper  Family = "whisper"
)

// Variant is the decoding state machine a family maps to.
type Variant string

const (
	VariantCTC        Variant = "ctc-argmax"
	VariantGenerative Variant = "generative"
)

// Info describes a loaded acoustic model. Fetched once per run.
type Info struct {
	ID             string   `json:"id"`
	ParameterCount int64    `json:"parameter_count"`
	// Symbols is the CTC symbol table in vocabulary order. Empty for
	// generative models.
	Symbols []string `json:"symbols"`
}

// Directive is the fixed language/task instruction generative models are
// conditioned on, established once per run.
type Directive struct {
	Language string
	Task     string
}

// Model is the opaque inference capability behind both decoding strategies.
type Model interface {
	Info() Info
}

// CTCModel produces per-timestep symbol distributions for classification
// style acoustic models.
type CTCModel interface {
	Model
	// Logits returns one probability-score row per timestep over the symbol
	// table. mask marks valid input positions; nil means no masking.
	Logits(ctx context.Context, inputValues []float32, mask []int) ([][]float32, error)
}

// GenerativeModel produces token ids autoregressively for sequence-to-
// sequence acoustic models.
type GenerativeModel interface {
	Model
	Generate(ctx context.Context, inputFeatures []float32, directive Directive, maxTokens int) ([]int, error)
	// DecodeTokens maps generated token ids to text with special tokens
	// stripped.
	DecodeTokens(ctx context.Context, ids []int) (string, error)
}

// Decoder turns one audio chunk into one transcript fragment. Calls are
// synchronous and never reentrant: one chunk completes before the next is
// read.
type Decoder interface {
	Decode(ctx context.Context, samples []float32, sampleRate int) (string, error)
	// Description names the resolved strategy for logging and run metadata.
	Description() string
}
