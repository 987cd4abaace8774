package segment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"yammer/internal/logging"
	"yammer/internal/media/wav"
	"yammer/internal/services"
	"yammer/internal/textnorm"
)

// Chunk is one fixed-duration audio segment written to scratch storage.
type Chunk struct {
	Path  string
	Index int
	Start time.Duration
	End   time.Duration
}

// Duration returns the length of this chunk.
func (c Chunk) Duration() time.Duration {
	return c.End - c.Start
}

// Sequence is the ordered chunk set derived from one media file. Order is
// load-bearing: transcript fragments must be concatenated in chunk order to
// reconstruct speech order.
type Sequence struct {
	Source      string
	Dir         string
	Chunks      []Chunk
	ChunkLength int // seconds
	SampleRate  int
}

// Cleanup removes the sequence's scratch directory. Safe to call multiple
// times and on a nil sequence; errors are ignored so cleanup can run on
// every exit path.
func (s *Sequence) Cleanup() {
	if s == nil || s.Dir == "" {
		return
	}
	_ = os.RemoveAll(s.Dir)
}

// Segmenter splits mono 16 kHz WAV files into consecutive fixed-duration
// chunks under a per-file scratch directory.
type Segmenter struct {
	scratchRoot string
	logger      *slog.Logger
}

func NewSegmenter(scratchRoot string, logger *slog.Logger) *Segmenter {
	return &Segmenter{
		scratchRoot: scratchRoot,
		logger:      logging.NewComponentLogger(logger, "segmenter"),
	}
}

// Segment splits the source audio into non-overlapping chunks of
// chunkLength seconds (last chunk may be shorter). Re-segmenting the same
// file wipes and rewrites its scratch directory, so retries are idempotent.
func (s *Segmenter) Segment(ctx context.Context, mediaPath string, chunkLength int) (*Sequence, error) {
	if chunkLength <= 0 {
		return nil, services.Wrap(services.ErrValidation, "segmenter", "segment",
			fmt.Sprintf("chunk length must be positive, got %d", chunkLength), nil)
	}

	samples, rate, err := wav.Read(mediaPath)
	if err != nil {
		return nil, services.Wrap(services.ErrMediaRead, "segmenter", "read source", mediaPath, err)
	}
	if rate != wav.SampleRate {
		return nil, services.Wrap(services.ErrMediaRead, "segmenter", "read source",
			fmt.Sprintf("%s: sample rate %d Hz, want %d Hz", mediaPath, rate, wav.SampleRate), nil)
	}

	stem := textnorm.SanitizeToken(trimExt(filepath.Base(mediaPath)))
	dir := filepath.Join(s.scratchRoot, stem)
	if err := os.RemoveAll(dir); err != nil {
		return nil, services.Wrap(services.ErrMediaRead, "segmenter", "reset scratch", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrMediaRead, "segmenter", "create scratch", dir, err)
	}

	seq := &Sequence{
		Source:      mediaPath,
		Dir:         dir,
		ChunkLength: chunkLength,
		SampleRate:  rate,
	}

	samplesPerChunk := chunkLength * rate
	for start, index := 0, 0; start < len(samples); start, index = start+samplesPerChunk, index+1 {
		if err := ctx.Err(); err != nil {
			seq.Cleanup()
			return nil, err
		}
		end := start + samplesPerChunk
		if end > len(samples) {
			end = len(samples)
		}
		path := filepath.Join(dir, fmt.Sprintf("chunk_%04d.wav", index))
		if err := wav.Write(path, samples[start:end], rate); err != nil {
			seq.Cleanup()
			return nil, services.Wrap(services.ErrMediaRead, "segmenter", "write chunk", path, err)
		}
		seq.Chunks = append(seq.Chunks, Chunk{
			Path:  path,
			Index: index,
			Start: sampleOffset(start, rate),
			End:   sampleOffset(end, rate),
		})
	}

	s.logger.Debug("segmented source",
		logging.String("source", mediaPath),
		logging.Int("chunk_count", len(seq.Chunks)),
		logging.Int("chunk_length_s", chunkLength),
	)
	return seq, nil
}

func sampleOffset(sample, rate int) time.Duration {
	return time.Duration(sample) * time.Second / time.Duration(rate)
}

func trimExt(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}
