package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"yammer/internal/services"
)

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger = NewComponentLogger(logger, "segmenter")
	logger.Info("chunks written", Int("chunk_count", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO segmenter: chunks written") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "chunk_count=3") {
		t.Fatalf("missing attr in line: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("saved", String("path", "/tmp/a b.txt"))
	if !strings.Contains(buf.String(), `path="/tmp/a b.txt"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithSource(ctx, "talk.mp4")
	ctx = services.WithStage(ctx, "inference")

	WithContext(ctx, logger).Info("stage started")

	out := buf.String()
	for _, want := range []string{"run_id=run-1", "source=talk.mp4", "stage=inference"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
