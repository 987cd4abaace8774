package spell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"yammer/internal/services"
)

// CommandRunner executes the corrector binary. Tests inject one to avoid
// spawning processes.
type CommandRunner func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

type advancedCorrector struct {
	binary string
	run    CommandRunner
}

// AdvancedOption adjusts the exec-backed corrector.
type AdvancedOption func(*advancedCorrector)

// WithCommandRunner replaces the process launcher.
func WithCommandRunner(run CommandRunner) AdvancedOption {
	return func(c *advancedCorrector) {
		c.run = run
	}
}

// newAdvancedCorrector locates the neural corrector binary and probes it
// with a trivial correction. Any failure here triggers degradation.
func newAdvancedCorrector(ctx context.Context, binary string, opts ...AdvancedOption) (*advancedCorrector, error) {
	if binary == "" {
		return nil, fmt.Errorf("advanced corrector binary not configured")
	}
	c := &advancedCorrector{binary: binary, run: runCommand}
	for _, opt := range opts {
		opt(c)
	}
	if c.run == nil {
		c.run = runCommand
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("locate %s: %w", binary, err)
	}
	if _, err := c.run(ctx, c.binary, []string{"--probe"}, nil); err != nil {
		return nil, fmt.Errorf("probe %s: %w", binary, err)
	}
	return c, nil
}

func (c *advancedCorrector) Correct(ctx context.Context, text string) (string, error) {
	out, err := c.run(ctx, c.binary, []string{"correct"}, []byte(text))
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "spell", "correct", "advanced correction failed", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

func runCommand(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}
