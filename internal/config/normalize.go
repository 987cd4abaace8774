package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Normalize expands paths and fills empty fields with defaults.
func (c *Config) Normalize() error {
	var err error

	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = ExpandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Model.ID = strings.TrimSpace(c.Model.ID)
	if c.Model.ID == "" {
		c.Model.ID = defaultModelID
	}
	c.Model.RunnerBinary = strings.TrimSpace(c.Model.RunnerBinary)
	if c.Model.RunnerBinary == "" {
		c.Model.RunnerBinary = defaultRunnerBinary
	}
	if c.Model.ChunkLength == 0 {
		c.Model.ChunkLength = defaultChunkLength
	}
	c.Model.Language = strings.TrimSpace(c.Model.Language)
	if c.Model.Language == "" {
		c.Model.Language = defaultLanguage
	}
	c.Model.Task = strings.TrimSpace(c.Model.Task)
	if c.Model.Task == "" {
		c.Model.Task = defaultTask
	}

	c.Spell.AdvancedBinary = strings.TrimSpace(c.Spell.AdvancedBinary)
	if c.Spell.AdvancedBinary == "" {
		c.Spell.AdvancedBinary = defaultSpellBinary
	}
	if c.Spell.DictionaryPath != "" {
		if c.Spell.DictionaryPath, err = ExpandPath(c.Spell.DictionaryPath); err != nil {
			return fmt.Errorf("spell.dictionary_path: %w", err)
		}
	}

	if c.Keywords.Count == 0 {
		c.Keywords.Count = defaultKeywordCount
	}
	if c.Keywords.MaxNgram == 0 {
		c.Keywords.MaxNgram = defaultKeywordMaxGram
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// ExpandPath resolves a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, path[2:])
		}
	}
	return filepath.Abs(path)
}
