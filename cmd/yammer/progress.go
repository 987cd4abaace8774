package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// progressReporter draws a per-file chunk bar on stderr. It stays silent
// when stderr is not a terminal or when verbose logs are streaming.
type progressReporter struct {
	enabled bool
	bar     *progressbar.ProgressBar
}

func newProgressReporter(allow bool) *progressReporter {
	return &progressReporter{
		enabled: allow && isatty.IsTerminal(os.Stderr.Fd()),
	}
}

func (p *progressReporter) chunkDone(done, total int) {
	if !p.enabled {
		return
	}
	if done == 1 || p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("decoding"),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionShowCount(),
		)
	}
	_ = p.bar.Set(done)
}

func (p *progressReporter) fileDone(done, total int, source string, err error) {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
