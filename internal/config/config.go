package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// ScratchDir holds per-file audio chunk directories during inference.
	ScratchDir string `toml:"scratch_dir"`
	LogDir     string `toml:"log_dir"`
	// MoveCompleted moves finished sources into completed/ by default; the
	// --move-completed flag overrides it per run.
	MoveCompleted bool `toml:"move_completed"`
}

// Model contains acoustic model and inference runner configuration.
type Model struct {
	// ID selects the acoustic model; substrings pick the decoding variant
	// (whisper -> generative; hubert/wavlm -> those CTC families; anything
	// else -> wav2vec2).
	ID string `toml:"id"`
	// RunnerBinary is the external inference runner executable.
	RunnerBinary string `toml:"runner_binary"`
	// RunnerArgs are extra arguments prepended to every runner invocation.
	RunnerArgs []string `toml:"runner_args"`
	// ChunkLength is the audio chunk duration in seconds.
	ChunkLength int `toml:"chunk_length"`
	// Language and Task form the generation directive for generative models.
	Language string `toml:"language"`
	Task     string `toml:"task"`
}

// Spell contains spell-correction chain configuration.
type Spell struct {
	// AdvancedBinary is the neural corrector executable tried first.
	AdvancedBinary string `toml:"advanced_binary"`
	// DictionaryPath optionally overrides the embedded frequency dictionary
	// used by the basic corrector.
	DictionaryPath string `toml:"dictionary_path"`
}

// Keywords contains keyword extraction configuration.
type Keywords struct {
	Count    int `toml:"count"`
	MaxNgram int `toml:"max_ngram"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Model    Model    `toml:"model"`
	Spell    Spell    `toml:"spell"`
	Keywords Keywords `toml:"keywords"`
	Logging  Logging  `toml:"logging"`
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	return "~/.config/yammer/config.toml"
}

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults are a complete configuration.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	resolved, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(resolved); err == nil {
		return fmt.Errorf("config file already exists: %s", resolved)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(resolved, []byte(sampleConfig), 0o644)
}

// Render serializes the configuration as TOML.
func (c *Config) Render() (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}
