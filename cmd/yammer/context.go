package main

import (
	"log/slog"
	"os"
	"sync"

	"yammer/internal/config"
	"yammer/internal/logging"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	once   sync.Once
	cfg    *config.Config
	logger *slog.Logger
	err    error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

// ensure loads the configuration and builds the logger once per process.
func (c *commandContext) ensure() (*config.Config, *slog.Logger, error) {
	c.once.Do(func() {
		cfg, err := config.Load(*c.configFlag)
		if err != nil {
			c.err = err
			return
		}
		for _, dir := range []string{cfg.Paths.ScratchDir, cfg.Paths.LogDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				c.err = err
				return
			}
		}
		logger, err := logging.NewFromConfig(cfg, *c.verboseFlag)
		if err != nil {
			c.err = err
			return
		}
		c.cfg = cfg
		c.logger = logger
	})
	return c.cfg, c.logger, c.err
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}
