package hybrid

import (
	"context"
	"time"
)

// SetSleep replaces the retry sleep, recording every requested delay.
func (e *Engine) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	e.sleep = fn
}

// SetClock replaces the engine clock.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// WaitBackground waits for background remote updates.
func (e *Engine) WaitBackground() {
	e.pending.Wait()
}
