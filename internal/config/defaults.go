package config

const (
	defaultScratchDir     = "~/.cache/yammer/chunks"
	defaultLogDir         = "~/.local/share/yammer/logs"
	defaultModelID        = "openai/whisper-base.en"
	defaultRunnerBinary   = "hf-asr-runner"
	defaultChunkLength    = 30
	defaultLanguage       = "en"
	defaultTask           = "transcribe"
	defaultSpellBinary    = "neuspell"
	defaultKeywordCount   = 25
	defaultKeywordMaxGram = 3
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			LogDir:     defaultLogDir,
		},
		Model: Model{
			ID:           defaultModelID,
			RunnerBinary: defaultRunnerBinary,
			ChunkLength:  defaultChunkLength,
			Language:     defaultLanguage,
			Task:         defaultTask,
		},
		Spell: Spell{
			AdvancedBinary: defaultSpellBinary,
		},
		Keywords: Keywords{
			Count:    defaultKeywordCount,
			MaxNgram: defaultKeywordMaxGram,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
