package services

import (
	"context"
	"time"
)

// Pacer spaces out external calls so the batch respects third-party rate
// limits. It is injected so tests can run the batch without wall-clock waits.
type Pacer interface {
	BetweenEngines(ctx context.Context)
	BetweenEntries(ctx context.Context)
}

type sleepPacer struct {
	engineDelay time.Duration
	entryDelay  time.Duration
}

func NewSleepPacer(engineDelay, entryDelay time.Duration) Pacer {
	if engineDelay <= 0 {
		engineDelay = 1 * time.Second
	}
	if entryDelay <= 0 {
		entryDelay = 2 * time.Second
	}
	return &sleepPacer{engineDelay: engineDelay, entryDelay: entryDelay}
}

func (p *sleepPacer) BetweenEngines(ctx context.Context) { sleepCtx(ctx, p.engineDelay) }
func (p *sleepPacer) BetweenEntries(ctx context.Context) { sleepCtx(ctx, p.entryDelay) }

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type nopPacer struct{}

// NewNopPacer returns a pacer that never waits, for tests.
func NewNopPacer() Pacer { return nopPacer{} }

func (nopPacer) BetweenEngines(ctx context.Context) {}
func (nopPacer) BetweenEntries(ctx context.Context) {}
