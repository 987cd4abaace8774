package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"yammer/internal/pipeline"
)

// renderRunReport formats the end-of-run summary: per-file status plus
// every produced output location. Printed even after partial failure.
func renderRunReport(result *pipeline.Result) string {
	rows := make([][]string, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		status := "ok"
		detail := outcome.Transcript
		if outcome.Err != nil {
			status = "failed"
			detail = outcome.Err.Error()
		}
		rows = append(rows, []string{filepath.Base(outcome.Source), status, detail})
	}

	var b strings.Builder
	if len(rows) > 0 {
		b.WriteString(renderTable([]string{"Source", "Status", "Output"}, rows))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Processed %d file(s), %d failed\n", result.Processed, result.Failed)
	fmt.Fprintf(&b, "Device: %s, decoder: %s, spelling: %s\n", result.Device, result.Decoder, result.CorrectorVariant)
	fmt.Fprintf(&b, "Transcripts: %s\n", result.TranscriptDir)
	if result.CorrectedDir != "" {
		fmt.Fprintf(&b, "Corrected text: %s\n", result.CorrectedDir)
	}
	fmt.Fprintf(&b, "Metadata: %s", result.MetadataPath)
	return b.String()
}
