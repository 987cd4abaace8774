// Package asr resolves and drives the acoustic decoding strategies.
//
// A model identifier selects one of two incompatible state machines once
// per run: CTC arg-max decoding for classification-style models (wav2vec2,
// hubert, wavlm) and autoregressive generation for sequence-to-sequence
// models (whisper). The attention-mask sub-variant of CTC decoding is also
// fixed at resolve time from the model's parameter count, so per-chunk call
// sites never inspect model types.
//
// The model itself is opaque: an external inference runner invoked per
// operation with JSON over stdio, mirroring how the rest of the pipeline
// wraps external tools.
package asr
