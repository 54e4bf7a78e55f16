// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// embedProgress draws a progress bar on stderr while chunks are embedded.
// It stays silent when stderr is not a terminal.
type embedProgress struct {
	enabled bool
	bar     *progressbar.ProgressBar
}

func newEmbedProgress() *embedProgress {
	return &embedProgress{enabled: term.IsTerminal(int(os.Stderr.Fd()))}
}

// update matches embedding.ProgressFunc.
func (p *embedProgress) update(done, total int) {
	if !p.enabled || total <= 0 {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("embedding"),
			progressbar.OptionSetWidth(32),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	_ = p.bar.Set(done)
}

func (p *embedProgress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
