package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"yammer/internal/asr"
	"yammer/internal/config"
	"yammer/internal/device"
	"yammer/internal/inference"
	"yammer/internal/logging"
	"yammer/internal/postprocess"
	"yammer/internal/runlock"
	"yammer/internal/runstore"
	"yammer/internal/segment"
	"yammer/internal/services"
	"yammer/internal/spell"
)

// Options selects what and how a run processes. Zero values defer to the
// configuration file.
type Options struct {
	InputDir      string
	ModelID       string
	ChunkLength   int
	MoveCompleted bool
	JoinText      bool
	BasicSpelling bool

	// OnFileDone fires after each file with running progress, for the CLI
	// progress bar.
	OnFileDone func(done, total int, source string, err error)
	// OnChunk fires after each decoded chunk of the current file.
	OnChunk func(done, total int)

	probe       device.ProbeFunc
	runnerExec  asr.CommandRunner
	convertExec CommandRunner
	spellOpts   []spell.AdvancedOption
}

// Result summarizes one completed run for reporting.
type Result struct {
	Device           device.Kind
	Decoder          string
	CorrectorVariant string
	TranscriptDir    string
	CorrectedDir     string
	MetadataPath     string
	Outcomes         []runstore.Outcome
	Processed        int
	Failed           int
}

// Run executes one batch over an input directory: preflight, sequential
// per-file transcription with error isolation, postprocessing, report data.
func Run(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	log := logger.With(
		logging.String(logging.FieldComponent, "pipeline"),
		logging.String(logging.FieldRunID, runID))

	modelID := cfg.Model.ID
	if opts.ModelID != "" {
		modelID = opts.ModelID
	}
	chunkLength := cfg.Model.ChunkLength
	if opts.ChunkLength > 0 {
		chunkLength = opts.ChunkLength
	}

	lock, err := runlock.Acquire(opts.InputDir)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	var monitorOpts []device.Option
	if opts.probe != nil {
		monitorOpts = append(monitorOpts, device.WithProbe(opts.probe))
	}
	monitor := device.NewMonitor(logger, monitorOpts...)
	kind := monitor.Select(ctx)

	runner := asr.NewRunner(asr.RunnerConfig{
		Binary:      cfg.Model.RunnerBinary,
		ExtraArgs:   cfg.Model.RunnerArgs,
		ModelID:     modelID,
		Accelerated: kind == device.Accelerated,
	}, logger)
	if opts.runnerExec != nil {
		runner.WithCommandRunner(opts.runnerExec)
	}
	monitor.AttachReleaser(runner)

	if err := preflight(ctx, runner, cfg.Spell.AdvancedBinary, opts.InputDir, log); err != nil {
		return nil, err
	}
	if err := runner.Load(ctx); err != nil {
		return nil, err
	}
	decoder, err := asr.Resolve(runner, asr.Directive{
		Language: cfg.Model.Language,
		Task:     cfg.Model.Task,
	})
	if err != nil {
		return nil, err
	}
	log.Info("decoder resolved",
		logging.String("model", modelID),
		logging.String("strategy", decoder.Description()))

	preferred := spell.VariantAdvanced
	if opts.BasicSpelling {
		preferred = spell.VariantBasic
	}
	handle, corrErr := spell.Acquire(ctx, cfg.Spell, preferred, logger, opts.spellOpts...)
	if corrErr != nil {
		log.Error("corrector unavailable, postprocess will be skipped", logging.Error(corrErr))
	}

	store, err := runstore.NewStore(opts.InputDir, opts.MoveCompleted, logger)
	if err != nil {
		return nil, err
	}
	files, err := discoverMedia(opts.InputDir)
	if err != nil {
		return nil, err
	}
	log.Info("run starting",
		logging.Int("files", len(files)),
		logging.String("device", string(kind)))

	var engineOpts []inference.Option
	if opts.OnChunk != nil {
		engineOpts = append(engineOpts, inference.WithChunkProgress(opts.OnChunk))
	}
	engine := inference.NewEngine(
		segment.NewSegmenter(cfg.Paths.ScratchDir, logger),
		decoder, monitor, store, chunkLength, logger, engineOpts...)
	conv := newConverter(logger)
	if opts.convertExec != nil {
		conv.run = opts.convertExec
	}

	result := &Result{
		Device:           kind,
		Decoder:          decoder.Description(),
		TranscriptDir:    store.TranscriptDir(),
		MetadataPath:     store.MetadataPath(),
		CorrectorVariant: "none",
	}
	if handle != nil {
		result.CorrectorVariant = handle.Variant()
	}

	for i, src := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		perr := processFile(ctx, engine, conv, store, cfg.Paths.ScratchDir, src)
		if perr != nil {
			if !services.IsFileFatal(perr) {
				return nil, perr
			}
			log.Error("file failed, continuing",
				logging.String(logging.FieldSource, filepath.Base(src)),
				logging.Error(perr))
			result.Failed++
		} else {
			result.Processed++
		}
		if opts.OnFileDone != nil {
			opts.OnFileDone(i+1, len(files), src, perr)
		}
	}

	if err := store.WriteMetadata(); err != nil {
		return nil, err
	}
	result.Outcomes = store.Outcomes()

	if corrErr != nil {
		return result, corrErr
	}
	if result.Processed > 0 {
		reducer := postprocess.NewReducer(handle, cfg.Keywords, !opts.JoinText, logger)
		correctedDir, err := reducer.Reduce(ctx, store.TranscriptDir(), store.MetadataDir(), store.Timestamp())
		if err != nil {
			return nil, err
		}
		result.CorrectedDir = correctedDir
	}

	log.Info("run complete",
		logging.Int("processed", result.Processed),
		logging.Int("failed", result.Failed))
	return result, nil
}

func processFile(ctx context.Context, engine *inference.Engine, conv *converter, store *runstore.Store, scratchDir, src string) error {
	wavPath, err := conv.ToWave(ctx, src, filepath.Join(scratchDir, "converted"))
	if err != nil {
		store.RecordOutcome(src, "", err)
		return err
	}
	defer func() {
		if wavPath != src {
			os.Remove(wavPath)
		}
	}()

	_, err = engine.Transcribe(ctx, wavPath, filepath.Base(src))
	if err != nil {
		store.RecordOutcome(src, "", err)
		return err
	}
	store.RecordOutcome(src, store.TranscriptPath(filepath.Base(src)), nil)
	store.CompleteSource(src)
	return nil
}
