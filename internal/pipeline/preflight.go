package pipeline

import (
	"context"
	"log/slog"
	"os/exec"

	"golang.org/x/sys/unix"

	"yammer/internal/asr"
	"yammer/internal/logging"
	"yammer/internal/services"
)

// preflight checks the run's external requirements before any file is
// touched. A missing model runner or an unusable input directory is fatal;
// a missing advanced corrector only pre-seeds degradation.
func preflight(ctx context.Context, runner *asr.Runner, spellBinary, inputDir string, logger *slog.Logger) error {
	if err := runner.CheckBinary(); err != nil {
		return err
	}
	logger.DebugContext(ctx, "model runner available")

	if spellBinary != "" {
		if _, err := exec.LookPath(spellBinary); err != nil {
			logger.WarnContext(ctx, "advanced corrector not found, run will use basic spelling",
				logging.String("binary", spellBinary))
		} else {
			logger.DebugContext(ctx, "advanced corrector available",
				logging.String("binary", spellBinary))
		}
	}

	if err := unix.Access(inputDir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "preflight", "input directory not accessible", err)
	}
	return nil
}
