// Package typing replays an already complete reply one character at a time.
package typing

import (
	"context"
	"strings"
	"time"
)

// Presenter reveals text at a fixed cadence.
type Presenter struct {
	interval time.Duration
}

// New returns a Presenter that waits interval between characters. A zero
// interval reveals without waiting, which tests rely on.
func New(interval time.Duration) *Presenter {
	return &Presenter{interval: interval}
}

// Reveal calls step once per character (rune) of text with the prefix
// revealed so far. It returns ctx.Err() if cancelled mid-reveal; step has
// then seen a strict prefix of text.
func (p *Presenter) Reveal(ctx context.Context, text string, step func(revealed string)) error {
	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		sb.WriteRune(r)
		step(sb.String())
	}
	return nil
}
