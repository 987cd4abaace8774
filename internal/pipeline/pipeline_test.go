package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yammer/internal/config"
	"yammer/internal/device"
	"yammer/internal/media/wav"
)

// fakeModelExec emulates the inference runner for a small wav2vec2 CTC
// model: every logits call spells "hi".
func fakeModelExec(t *testing.T) func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	t.Helper()
	return func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
		switch args[0] {
		case "info":
			return json.Marshal(map[string]any{
				"id":              "facebook/wav2vec2-base-960h",
				"parameter_count": 94396320,
				"symbols":         []string{"<pad>", "|", "h", "i"},
			})
		case "logits":
			return json.Marshal(map[string]any{
				"logits": [][]float32{
					{0, 0, 1, 0},
					{0, 0, 0, 1},
				},
			})
		case "free-cache":
			return []byte("{}"), nil
		default:
			t.Errorf("unexpected runner subcommand %q", args[0])
			return nil, nil
		}
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.ScratchDir = filepath.Join(t.TempDir(), "scratch")
	cfg.Model.RunnerBinary = writeFakeBinary(t, "hf-asr-runner")
	return &cfg
}

func writeFakeBinary(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	return path
}

func writeWave(t *testing.T, dir, name string, seconds float64) string {
	t.Helper()
	samples := make([]float32, int(seconds*float64(wav.SampleRate)))
	for i := range samples {
		samples[i] = 0.1
	}
	path := filepath.Join(dir, name)
	if err := wav.Write(path, samples, wav.SampleRate); err != nil {
		t.Fatalf("write wave: %v", err)
	}
	return path
}

func baseOptions(input string, t *testing.T) Options {
	return Options{
		InputDir:      input,
		BasicSpelling: true,
		probe:         func() bool { return false },
		runnerExec:    fakeModelExec(t),
	}
}

func TestRunSingleFile(t *testing.T) {
	input := t.TempDir()
	writeWave(t, input, "lecture.wav", 65)
	cfg := testConfig(t)

	result, err := Run(context.Background(), cfg, baseOptions(input, t), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 1 || result.Failed != 0 {
		t.Fatalf("processed=%d failed=%d, want 1/0", result.Processed, result.Failed)
	}
	if result.Device != device.CPU {
		t.Fatalf("device = %q, want cpu", result.Device)
	}
	if result.CorrectorVariant != "basic" {
		t.Fatalf("corrector = %q, want basic", result.CorrectorVariant)
	}

	file, err := os.Open(result.MetadataPath)
	if err != nil {
		t.Fatalf("metadata missing: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("metadata has %d records, want header + 1", len(records))
	}
	if records[1][0] != "lecture.wav" || records[1][1] != "3" {
		t.Fatalf("metadata row wrong: %v", records[1])
	}
	if !strings.Contains(records[1][5], "hi") {
		t.Fatalf("full text missing decoded fragments: %q", records[1][5])
	}

	if result.CorrectedDir == "" {
		t.Fatal("postprocess did not run")
	}
	entries, err := os.ReadDir(result.CorrectedDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("corrected dir wrong: %v, %d entries", err, len(entries))
	}
}

func TestRunSameStemSourcesKeepSeparateTranscripts(t *testing.T) {
	input := t.TempDir()
	writeWave(t, input, "talk.wav", 35)
	if err := os.WriteFile(filepath.Join(input, "talk.mp4"), []byte("container"), 0o644); err != nil {
		t.Fatalf("seed mp4: %v", err)
	}
	cfg := testConfig(t)

	opts := baseOptions(input, t)
	opts.convertExec = func(ctx context.Context, name string, args []string) error {
		dst := args[len(args)-1]
		samples := make([]float32, 35*wav.SampleRate)
		return wav.Write(dst, samples, wav.SampleRate)
	}

	result, err := Run(context.Background(), cfg, opts, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 2 || result.Failed != 0 {
		t.Fatalf("processed=%d failed=%d, want 2/0", result.Processed, result.Failed)
	}

	entries, err := os.ReadDir(result.TranscriptDir)
	if err != nil {
		t.Fatalf("read transcript dir: %v", err)
	}
	transcripts := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), "_full.txt") {
			transcripts++
		}
	}
	if transcripts != 2 {
		t.Fatalf("got %d transcript files for 2 sources, want 2", transcripts)
	}

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(result.MetadataPath), "keyword_db_*.csv"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("keyword database missing: %v, %v", matches, err)
	}
	file, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open keyword database: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read database: %v", err)
	}
	if len(records[0]) != 4 {
		t.Fatalf("keyword database has %d header cells for 2 sources, want 4", len(records[0]))
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	input := t.TempDir()
	cfg := testConfig(t)

	result, err := Run(context.Background(), cfg, baseOptions(input, t), nil)
	if err != nil {
		t.Fatalf("Run on empty dir: %v", err)
	}
	if result.Processed != 0 || result.Failed != 0 {
		t.Fatalf("processed=%d failed=%d, want 0/0", result.Processed, result.Failed)
	}

	file, err := os.Open(result.MetadataPath)
	if err != nil {
		t.Fatalf("empty run should still write metadata table: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("metadata has %d records, want header only", len(records))
	}
	if result.CorrectedDir != "" {
		t.Fatal("empty run should not postprocess")
	}
}

func TestRunIsolatesPerFileFailure(t *testing.T) {
	input := t.TempDir()
	writeWave(t, input, "good.wav", 35)
	if err := os.WriteFile(filepath.Join(input, "bad.wav"), []byte("not audio"), 0o644); err != nil {
		t.Fatalf("seed bad file: %v", err)
	}
	cfg := testConfig(t)

	var progress []string
	opts := baseOptions(input, t)
	opts.OnFileDone = func(done, total int, source string, err error) {
		progress = append(progress, filepath.Base(source))
	}

	result, err := Run(context.Background(), cfg, opts, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 1 || result.Failed != 1 {
		t.Fatalf("processed=%d failed=%d, want 1/1", result.Processed, result.Failed)
	}
	if len(progress) != 2 || progress[0] != "bad.wav" || progress[1] != "good.wav" {
		t.Fatalf("progress order wrong: %v", progress)
	}
	outcomes := result.Outcomes
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	if outcomes[0].Err == nil || outcomes[1].Err != nil {
		t.Fatalf("outcome errors wrong: %+v", outcomes)
	}
}

func TestRunMoveCompleted(t *testing.T) {
	input := t.TempDir()
	src := writeWave(t, input, "talk.wav", 35)
	cfg := testConfig(t)

	opts := baseOptions(input, t)
	opts.MoveCompleted = true
	if _, err := Run(context.Background(), cfg, opts, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source not moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(input, "completed", "talk.wav")); err != nil {
		t.Fatalf("completed copy missing: %v", err)
	}
}

func TestDiscoverMediaFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.wav", "b.mp4", "notes.txt", "c.MP3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.wav"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files, err := discoverMedia(dir)
	if err != nil {
		t.Fatalf("discoverMedia: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %v", len(files), files)
	}
}
