package main

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progress draws one bar while scanning and one while summarizing. A
// disabled progress ignores every call.
type progress struct {
	enabled bool
	scan    *progressbar.ProgressBar
	summary *progressbar.ProgressBar
}

func newProgress(enabled bool) *progress {
	return &progress{enabled: enabled}
}

func (p *progress) startScan(total int64) {
	if !p.enabled {
		return
	}
	p.scan = progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Scanning Data..."),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *progress) scanned(n int64) {
	if p.scan != nil {
		p.scan.Add64(n)
	}
}

func (p *progress) startSummary(keys int) {
	if !p.enabled {
		return
	}
	if p.scan != nil {
		p.scan.Finish()
	}
	p.summary = progressbar.NewOptions(keys,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Processing Data..."),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *progress) summarized(int) {
	if p.summary != nil {
		p.summary.Add(1)
	}
}

func (p *progress) finish() {
	for _, bar := range []*progressbar.ProgressBar{p.scan, p.summary} {
		if bar != nil {
			bar.Finish()
		}
	}
}
