package runstore

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"yammer/internal/fileutil"
	"yammer/internal/logging"
	"yammer/internal/services"
	"yammer/internal/textnorm"
)

const (
	transcriptDirName = "yammer-transcriptions"
	metadataDirName   = "yammer-metadata"
	correctedDirName  = "corrected"
	completedDirName  = "completed"

	timestampLayout = "20060102_150405"
)

// MetadataRow describes one successfully transcribed file. Column order in
// the persisted table follows the field order here.
type MetadataRow struct {
	Identifier    string
	ChunkCount    int
	ChunkDuration float64
	DurationMin   float64
	Timestamp     string
	Text          string
	CharCount     int
	WordCount     int
}

// Outcome records how one source file fared, for the end-of-run report.
type Outcome struct {
	Source     string
	Transcript string
	Err        error
}

// Store accumulates per-file transcripts and metadata for a single run. All
// output lives under the input directory so a run's artifacts travel with
// its sources.
type Store struct {
	root          string
	timestamp     string
	moveCompleted bool
	logger        *slog.Logger

	rows     []MetadataRow
	outcomes []Outcome
}

// NewStore creates the output directories for a run rooted at inputDir. The
// run timestamp is fixed at construction so every artifact of the run shares
// it.
func NewStore(inputDir string, moveCompleted bool, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Store{
		root:          inputDir,
		timestamp:     time.Now().UTC().Format(timestampLayout),
		moveCompleted: moveCompleted,
		logger:        logger.With(logging.String(logging.FieldComponent, "runstore")),
	}
	for _, dir := range []string{s.TranscriptDir(), s.MetadataDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "runstore", "create_dirs", "create output directory", err)
		}
	}
	return s, nil
}

// Timestamp returns the run timestamp shared by all artifacts of this run.
func (s *Store) Timestamp() string {
	return s.timestamp
}

// TranscriptDir is where full and corrected transcripts live.
func (s *Store) TranscriptDir() string {
	return filepath.Join(s.root, transcriptDirName)
}

// MetadataDir is where the per-run metadata table lives.
func (s *Store) MetadataDir() string {
	return filepath.Join(s.root, metadataDirName)
}

// CorrectedDir is where the postprocess stage writes corrected transcripts.
func (s *Store) CorrectedDir() string {
	return filepath.Join(s.TranscriptDir(), correctedDirName)
}

// MetadataPath is the run's metadata table file.
func (s *Store) MetadataPath() string {
	return filepath.Join(s.MetadataDir(), "run_metadata_"+s.timestamp+".csv")
}

// TranscriptPath returns the transcript path for a source filename. The
// whole filename is sanitized, extension included, so sources differing
// only by extension never share a path.
func (s *Store) TranscriptPath(sourceName string) string {
	name := fmt.Sprintf("%s_yammer_%s_full.txt", textnorm.SanitizeToken(sourceName), s.timestamp)
	return filepath.Join(s.TranscriptDir(), name)
}

// SaveTranscript writes the full transcript for a source filename and
// returns its path.
func (s *Store) SaveTranscript(sourceName, text string) (string, error) {
	path := s.TranscriptPath(sourceName)
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "runstore", "save_transcript", "write transcript", err)
	}
	s.logger.Debug("transcript written", logging.String("path", path))
	return path, nil
}

// Append adds one metadata row. Insertion order is processing order.
func (s *Store) Append(row MetadataRow) {
	s.rows = append(s.rows, row)
}

// Rows returns the accumulated metadata table.
func (s *Store) Rows() []MetadataRow {
	return s.rows
}

// RecordOutcome notes a per-file result for the run report.
func (s *Store) RecordOutcome(source, transcript string, err error) {
	s.outcomes = append(s.outcomes, Outcome{Source: source, Transcript: transcript, Err: err})
}

// Outcomes returns the per-file results in processing order.
func (s *Store) Outcomes() []Outcome {
	return s.outcomes
}

// WriteMetadata persists the metadata table. An empty run still produces a
// header-only table so the run leaves a record.
func (s *Store) WriteMetadata() error {
	file, err := os.Create(s.MetadataPath())
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "runstore", "write_metadata", "create metadata table", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{
		"file identifier", "chunk count", "chunk duration (s)",
		"total duration (min)", "timestamp", "full text",
		"character count", "word count",
	}
	if err := w.Write(header); err != nil {
		return services.Wrap(services.ErrExternalTool, "runstore", "write_metadata", "write header", err)
	}
	for _, row := range s.rows {
		record := []string{
			row.Identifier,
			strconv.Itoa(row.ChunkCount),
			formatFloat(row.ChunkDuration),
			formatFloat(row.DurationMin),
			row.Timestamp,
			row.Text,
			strconv.Itoa(row.CharCount),
			strconv.Itoa(row.WordCount),
		}
		if err := w.Write(record); err != nil {
			return services.Wrap(services.ErrExternalTool, "runstore", "write_metadata", "write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return services.Wrap(services.ErrExternalTool, "runstore", "write_metadata", "flush metadata table", err)
	}
	s.logger.Info("metadata table written",
		logging.String("path", s.MetadataPath()),
		logging.Int("rows", len(s.rows)))
	return nil
}

// CompleteSource moves a finished source into the completed directory when
// the store was built with moveCompleted. A move failure is logged, not
// fatal: the transcript already exists.
func (s *Store) CompleteSource(path string) {
	if !s.moveCompleted {
		return
	}
	dst := filepath.Join(s.root, completedDirName)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		s.logger.Warn("completed directory unavailable", logging.Error(err))
		return
	}
	moved, err := fileutil.MoveFile(path, dst)
	if err != nil {
		s.logger.Warn("completed move failed",
			logging.String("source", path), logging.Error(err))
		return
	}
	s.logger.Debug("source moved to completed", logging.String("destination", moved))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
