package cli

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/matzehuels/decksmith/pkg/progress"
)

// cardBar renders progress snapshots of an import or export as a terminal
// progress bar. The bar is created on the first snapshot because the total
// is only known once the run starts.
type cardBar struct {
	w           io.Writer
	description string

	mu  sync.Mutex
	bar *progressbar.ProgressBar
	max int
}

func newCardBar(w io.Writer, description string) *cardBar {
	return &cardBar{w: w, description: description}
}

// Func returns the progress callback to hand to the pipeline.
func (b *cardBar) Func() progress.Func {
	return b.update
}

func (b *cardBar) update(p progress.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar == nil {
		b.max = p.Total
		b.bar = progressbar.NewOptions(p.Total,
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionSetDescription(b.description),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	if p.Total != b.max {
		b.max = p.Total
		b.bar.ChangeMax(p.Total)
	}
	if p.Label != "" {
		b.bar.Describe(b.description + " " + StyleDim.Render(truncate(p.Label, 32)))
	}
	_ = b.bar.Set(p.Current)
	if p.Done() {
		_ = b.bar.Finish()
	}
}

// Close finishes a bar that never reached its total, e.g. on cancellation.
func (b *cardBar) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil && !b.bar.IsFinished() {
		_ = b.bar.Finish()
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
