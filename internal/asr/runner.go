package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"yammer/internal/logging"
	"yammer/internal/services"
)

// CommandRunner executes the inference runner binary. Tests substitute it to
// avoid spawning processes.
type CommandRunner func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

// RunnerConfig captures settings for the external inference runner.
type RunnerConfig struct {
	// Binary is the runner executable.
	Binary string
	// ExtraArgs are prepended to every invocation.
	ExtraArgs []string
	// ModelID is the acoustic model the runner serves for this run.
	ModelID string
	// Accelerated asks the runner to place the model on the accelerator.
	Accelerated bool
}

// Runner is the exec-backed acoustic model: each operation is one runner
// invocation exchanging JSON over stdio. It implements both CTCModel and
// GenerativeModel; Resolve picks the side the model family needs.
type Runner struct {
	cfg    RunnerConfig
	logger *slog.Logger
	run    CommandRunner

	info   Info
	loaded bool
}

func NewRunner(cfg RunnerConfig, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "asr-runner"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (r *Runner) WithCommandRunner(run CommandRunner) {
	r.run = run
}

// CheckBinary reports whether the runner executable can be found.
func (r *Runner) CheckBinary() error {
	if _, err := exec.LookPath(r.cfg.Binary); err != nil {
		return services.Wrap(services.ErrConfiguration, "asr", "check runner",
			fmt.Sprintf("inference runner %q not found", r.cfg.Binary), err)
	}
	return nil
}

// Load fetches model info once; subsequent calls are no-ops. Info drives
// variant resolution and the attention-mask rule, so it must happen before
// the first decode.
func (r *Runner) Load(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	out, err := r.invoke(ctx, nil, "info")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "asr", "load model", r.cfg.ModelID, err)
	}
	var info Info
	if err := json.Unmarshal(out, &info); err != nil {
		return services.Wrap(services.ErrExternalTool, "asr", "load model", "parse info payload", err)
	}
	if info.ID == "" {
		info.ID = r.cfg.ModelID
	}
	r.info = info
	r.loaded = true
	r.logger.Debug("model loaded",
		logging.String("model", info.ID),
		logging.Int64("parameter_count", info.ParameterCount),
		logging.Int("symbol_count", len(info.Symbols)),
	)
	return nil
}

func (r *Runner) Info() Info {
	return r.info
}

type logitsRequest struct {
	InputValues   []float32 `json:"input_values"`
	AttentionMask []int     `json:"attention_mask,omitempty"`
}

type logitsResponse struct {
	Logits [][]float32 `json:"logits"`
}

func (r *Runner) Logits(ctx context.Context, inputValues []float32, mask []int) ([][]float32, error) {
	payload, err := json.Marshal(logitsRequest{InputValues: inputValues, AttentionMask: mask})
	if err != nil {
		return nil, err
	}
	args := []string{"logits"}
	if mask != nil {
		args = append(args, "--attention-mask")
	}
	out, err := r.invoke(ctx, payload, args...)
	if err != nil {
		return nil, err
	}
	var resp logitsResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("parse logits payload: %w", err)
	}
	return resp.Logits, nil
}

type generateRequest struct {
	InputFeatures []float32 `json:"input_features"`
}

type generateResponse struct {
	TokenIDs []int `json:"token_ids"`
}

func (r *Runner) Generate(ctx context.Context, inputFeatures []float32, directive Directive, maxTokens int) ([]int, error) {
	payload, err := json.Marshal(generateRequest{InputFeatures: inputFeatures})
	if err != nil {
		return nil, err
	}
	out, err := r.invoke(ctx, payload, "generate",
		"--language", directive.Language,
		"--task", directive.Task,
		"--max-length", strconv.Itoa(maxTokens),
	)
	if err != nil {
		return nil, err
	}
	var resp generateResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("parse generate payload: %w", err)
	}
	return resp.TokenIDs, nil
}

type decodeRequest struct {
	TokenIDs []int `json:"token_ids"`
}

type decodeResponse struct {
	Text string `json:"text"`
}

func (r *Runner) DecodeTokens(ctx context.Context, ids []int) (string, error) {
	payload, err := json.Marshal(decodeRequest{TokenIDs: ids})
	if err != nil {
		return "", err
	}
	out, err := r.invoke(ctx, payload, "decode", "--skip-special-tokens")
	if err != nil {
		return "", err
	}
	var resp decodeResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return "", fmt.Errorf("parse decode payload: %w", err)
	}
	return resp.Text, nil
}

// FreeCache asks the runner to drop device-resident scratch state. The
// device monitor calls this after every chunk on accelerated runs.
func (r *Runner) FreeCache(ctx context.Context) error {
	_, err := r.invoke(ctx, nil, "free-cache")
	return err
}

func (r *Runner) invoke(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	full := make([]string, 0, len(r.cfg.ExtraArgs)+len(args)+4)
	full = append(full, r.cfg.ExtraArgs...)
	full = append(full, args...)
	full = append(full, "--model", r.cfg.ModelID)
	if r.cfg.Accelerated {
		full = append(full, "--device", "accel")
	}

	if r.run != nil {
		return r.run(ctx, r.cfg.Binary, full, stdin)
	}

	cmd := exec.CommandContext(ctx, r.cfg.Binary, full...) //nolint:gosec
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", r.cfg.Binary, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
