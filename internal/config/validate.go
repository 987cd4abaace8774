package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Model.ChunkLength <= 0 {
		return errors.New("model.chunk_length must be a positive number of seconds")
	}
	if c.Model.RunnerBinary == "" {
		return errors.New("model.runner_binary must be set")
	}
	if c.Keywords.Count <= 0 {
		return errors.New("keywords.count must be positive")
	}
	if c.Keywords.MaxNgram <= 0 {
		return errors.New("keywords.max_ngram must be positive")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
