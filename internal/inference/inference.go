package inference

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"yammer/internal/asr"
	"yammer/internal/device"
	"yammer/internal/logging"
	"yammer/internal/media/wav"
	"yammer/internal/runstore"
	"yammer/internal/segment"
	"yammer/internal/services"
	"yammer/internal/textnorm"
)

const timestampLayout = "20060102_150405"

// Engine drives one file through segmentation, sequential chunk decoding,
// and persistence. At most one chunk is in flight at any time.
type Engine struct {
	segmenter   *segment.Segmenter
	decoder     asr.Decoder
	monitor     *device.Monitor
	store       *runstore.Store
	logger      *slog.Logger
	chunkLength int
	now         func() time.Time
	onChunk     func(done, total int)
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithChunkProgress installs a callback fired after each decoded chunk.
func WithChunkProgress(fn func(done, total int)) Option {
	return func(e *Engine) {
		e.onChunk = fn
	}
}

func NewEngine(segmenter *segment.Segmenter, decoder asr.Decoder, monitor *device.Monitor, store *runstore.Store, chunkLength int, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		segmenter:   segmenter,
		decoder:     decoder,
		monitor:     monitor,
		store:       store,
		logger:      logging.NewComponentLogger(logger, "inference"),
		chunkLength: chunkLength,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transcribe processes one media file end to end. On success it persists
// the transcript, appends exactly one metadata row, and returns that row.
// On any failure no row is written. Scratch chunks are removed on every
// exit path. sourceName overrides the metadata identifier when mediaPath
// is a converted intermediate; empty means use the media file name.
func (e *Engine) Transcribe(ctx context.Context, mediaPath, sourceName string) (runstore.MetadataRow, error) {
	if sourceName == "" {
		sourceName = filepath.Base(mediaPath)
	}
	ctx = services.WithSource(services.WithStage(ctx, "inference"), sourceName)
	logger := logging.WithContext(ctx, e.logger)

	seq, err := e.segmenter.Segment(ctx, mediaPath, e.chunkLength)
	defer seq.Cleanup()
	if err != nil {
		return runstore.MetadataRow{}, err
	}
	logger.Info("segmented", logging.Int("chunks", len(seq.Chunks)))

	e.monitor.Select(ctx)
	interval := device.CheckpointInterval(len(seq.Chunks))

	fragments := make([]string, 0, len(seq.Chunks))
	for i, chunk := range seq.Chunks {
		if err := ctx.Err(); err != nil {
			return runstore.MetadataRow{}, services.Wrap(services.ErrDecode, "inference", "decode_chunk", "transcription interrupted", err)
		}
		if i%interval == 0 {
			e.monitor.Checkpoint(ctx)
		}
		samples, rate, err := wav.Read(chunk.Path)
		if err != nil {
			return runstore.MetadataRow{}, services.Wrap(services.ErrMediaRead, "inference", "read_chunk", "read scratch chunk", err)
		}
		text, err := e.decoder.Decode(ctx, samples, rate)
		if err != nil {
			return runstore.MetadataRow{}, services.Wrap(services.ErrDecode, "inference", "decode_chunk", "decode chunk", err)
		}
		fragments = append(fragments, text)
		logger.Debug("chunk decoded",
			logging.Int("index", chunk.Index),
			logging.Int("characters", len(text)))
		e.monitor.ReleaseScratch(ctx)
		if e.onChunk != nil {
			e.onChunk(i+1, len(seq.Chunks))
		}
	}

	full := textnorm.Normalize(strings.Join(fragments, "\n"))
	totalSeconds := 0.0
	if n := len(seq.Chunks); n > 0 {
		totalSeconds = seq.Chunks[n-1].End.Seconds()
	}

	transcriptPath, err := e.store.SaveTranscript(sourceName, full)
	if err != nil {
		return runstore.MetadataRow{}, err
	}

	row := runstore.MetadataRow{
		Identifier:    sourceName,
		ChunkCount:    len(seq.Chunks),
		ChunkDuration: float64(e.chunkLength),
		DurationMin:   totalSeconds / 60,
		Timestamp:     e.now().UTC().Format(timestampLayout),
		Text:          full,
		CharCount:     utf8.RuneCountInString(full),
		WordCount:     countWords(full),
	}
	e.store.Append(row)
	logger.Info("transcript complete",
		logging.String("transcript", transcriptPath),
		logging.Int("words", row.WordCount))
	return row, nil
}

func countWords(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Split(text, " "))
}
