package spell

import (
	"context"
	"log/slog"

	"yammer/internal/config"
	"yammer/internal/logging"
	"yammer/internal/services"
)

// Variant names which corrector a handle carries.
const (
	VariantAdvanced = "advanced"
	VariantBasic    = "basic"
)

// Corrector fixes recognition misspellings in transcript text.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

// Handle is an acquired corrector plus its variant tag. A handle is fixed
// for the whole run; degradation happens at acquisition, never mid-run.
type Handle struct {
	corrector Corrector
	variant   string
}

func (h *Handle) Correct(ctx context.Context, text string) (string, error) {
	return h.corrector.Correct(ctx, text)
}

// Variant reports which corrector backs this handle.
func (h *Handle) Variant() string {
	return h.variant
}

// Acquire resolves the corrector for a run. With preferred = VariantAdvanced
// it tries the exec-backed neural corrector first and degrades to the basic
// in-process corrector on any initialization failure, logging a warning.
// Acquisition fails only when the basic corrector cannot load either.
func Acquire(ctx context.Context, cfg config.Spell, preferred string, logger *slog.Logger, opts ...AdvancedOption) (*Handle, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldComponent, "spell"))

	if preferred == VariantAdvanced {
		advanced, err := newAdvancedCorrector(ctx, cfg.AdvancedBinary, opts...)
		if err == nil {
			logger.Info("advanced corrector ready", logging.String("binary", cfg.AdvancedBinary))
			return &Handle{corrector: advanced, variant: VariantAdvanced}, nil
		}
		logger.Warn("advanced corrector unavailable, using basic",
			logging.Error(err))
	}

	basic, err := newBasicCorrector(cfg.DictionaryPath)
	if err != nil {
		return nil, services.Wrap(services.ErrCorrectorInit, "spell", "acquire", "no corrector available", err)
	}
	logger.Info("basic corrector ready", logging.Int("dictionary_words", basic.size()))
	return &Handle{corrector: basic, variant: VariantBasic}, nil
}
