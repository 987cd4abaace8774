package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMediaRead marks failures to read or parse a source media file.
	// Fatal for that file only; the batch continues.
	ErrMediaRead = errors.New("media read error")
	// ErrDecode marks acoustic model failures on a chunk. Fatal for the
	// whole file's inference loop; no partial transcript is persisted.
	ErrDecode = errors.New("decode error")
	// ErrCorrectorInit marks spell corrector initialization failures.
	// Recovered by degrading to the basic corrector unless both variants fail.
	ErrCorrectorInit = errors.New("corrector init error")
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes pipeline context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFileFatal reports whether an error aborts only the current file's run.
// Media read and decode failures are isolated so one bad input cannot abort
// a multi-file batch.
func IsFileFatal(err error) bool {
	return errors.Is(err, ErrMediaRead) || errors.Is(err, ErrDecode)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
