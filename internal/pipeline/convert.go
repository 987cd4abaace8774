package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"yammer/internal/logging"
	"yammer/internal/services"
)

// mediaExtensions is the recognized input allow-list. Anything else in the
// input directory is ignored.
var mediaExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".mp4":  true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

// discoverMedia lists recognized media files directly under dir, sorted by
// name so processing order is stable.
func discoverMedia(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "discover", "read input directory", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if mediaExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// CommandRunner executes an external binary. Tests substitute it.
type CommandRunner func(ctx context.Context, name string, args []string) error

// converter shells out to ffmpeg to turn arbitrary media into the mono
// 16 kHz WAV the segmenter requires. WAV sources pass through untouched.
type converter struct {
	binary string
	run    CommandRunner
	logger *slog.Logger
}

func newConverter(logger *slog.Logger) *converter {
	return &converter{
		binary: "ffmpeg",
		run:    runCommand,
		logger: logging.NewComponentLogger(logger, "convert"),
	}
}

// ToWave returns a mono 16 kHz WAV path for src, converting into dstDir
// when needed.
func (c *converter) ToWave(ctx context.Context, src, dstDir string) (string, error) {
	if strings.EqualFold(filepath.Ext(src), ".wav") {
		return src, nil
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrMediaRead, "pipeline", "convert", "create conversion directory", err)
	}
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(dstDir, stem+".wav")
	args := []string{"-y", "-i", src, "-ac", "1", "-ar", "16000", "-acodec", "pcm_s16le", dst}
	if err := c.run(ctx, c.binary, args); err != nil {
		return "", services.Wrap(services.ErrMediaRead, "pipeline", "convert",
			fmt.Sprintf("convert %s to wav", filepath.Base(src)), err)
	}
	c.logger.Debug("media converted", logging.String("source", src), logging.String("wav", dst))
	return dst, nil
}

func runCommand(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
