package postprocess

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"yammer/internal/config"
	"yammer/internal/keywords"
	"yammer/internal/logging"
	"yammer/internal/services"
	"yammer/internal/spell"
	"yammer/internal/textnorm"
)

const (
	fullSuffix      = "_full.txt"
	correctedSuffix = "_corrected.txt"
)

// Reducer runs the after-all-files stage: spell-correct each transcript,
// reshape it, and fold per-transcript keywords into one database.
type Reducer struct {
	handle         *spell.Handle
	topN           int
	maxNgram       int
	splitSentences bool
	logger         *slog.Logger
}

func NewReducer(handle *spell.Handle, cfg config.Keywords, splitSentences bool, logger *slog.Logger) *Reducer {
	return &Reducer{
		handle:         handle,
		topN:           cfg.Count,
		maxNgram:       cfg.MaxNgram,
		splitSentences: splitSentences,
		logger:         logging.NewComponentLogger(logger, "postprocess"),
	}
}

// Reduce processes every full transcript under transcriptDir in name order,
// writes corrected text beneath it, and persists the keyword database under
// databaseDir with the run timestamp. Zero transcripts means no database
// file and no error.
func (r *Reducer) Reduce(ctx context.Context, transcriptDir, databaseDir, timestamp string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(transcriptDir, "*"+fullSuffix))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "postprocess", "discover", "enumerate transcripts", err)
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		r.logger.Info("no transcripts to postprocess")
		return "", nil
	}

	correctedDir := filepath.Join(transcriptDir, "corrected")
	if err := os.MkdirAll(correctedDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "postprocess", "prepare", "create corrected directory", err)
	}

	var db keywords.Database
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return "", services.Wrap(services.ErrExternalTool, "postprocess", "reduce", "postprocess interrupted", err)
		}
		corrected, err := r.processTranscript(ctx, path, correctedDir)
		if err != nil {
			return "", err
		}
		db.Add(filepath.Base(path), keywords.Extract(corrected, r.topN, r.maxNgram))
	}

	dbPath := filepath.Join(databaseDir, "keyword_db_"+timestamp+".csv")
	if err := db.WriteCSV(dbPath); err != nil {
		return "", err
	}
	r.logger.Info("keyword database written",
		logging.String("path", dbPath),
		logging.Int("sources", db.Len()),
		logging.String("corrector", r.handle.Variant()))
	return correctedDir, nil
}

func (r *Reducer) processTranscript(ctx context.Context, path, correctedDir string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrMediaRead, "postprocess", "read_transcript", "read transcript", err)
	}
	corrected, err := r.handle.Correct(ctx, string(data))
	if err != nil {
		return "", err
	}
	corrected = textnorm.Normalize(corrected)

	output := corrected
	if r.splitSentences {
		output = strings.Join(textnorm.SplitSentences(corrected), "\n")
	}

	stem := strings.TrimSuffix(filepath.Base(path), fullSuffix)
	dst := filepath.Join(correctedDir, stem+correctedSuffix)
	if err := os.WriteFile(dst, []byte(output+"\n"), 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "postprocess", "write_corrected", "write corrected transcript", err)
	}
	r.logger.Debug("transcript corrected", logging.String("path", dst))
	return corrected, nil
}
