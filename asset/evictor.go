package asset

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Caboosey/mapillary-js/graph"
	"github.com/Caboosey/mapillary-js/logger"
)

// Evictor ages the asset cache: when more nodes are cached than the ceiling
// allows, the least-recently-used ones are uncached. The cache operation
// itself never discards assets; this worker is the only eviction path.
type Evictor struct {
	arena      *graph.Arena
	ledger     *Ledger
	maxCached  int
	keepActive int
	interval   time.Duration
	log        *zap.SugaredLogger
}

// NewEvictor builds an eviction worker over the arena. A maxCached of 0
// disables eviction. The ledger is optional. A nil log falls back to the
// global logger.
func NewEvictor(arena *graph.Arena, ledger *Ledger, maxCached, keepActive int, interval time.Duration, log *zap.SugaredLogger) *Evictor {
	if log == nil {
		log = logger.Logger
	}
	return &Evictor{
		arena:      arena,
		ledger:     ledger,
		maxCached:  maxCached,
		keepActive: keepActive,
		interval:   interval,
		log:        log.Named("evictor"),
	}
}

// Run sweeps on the configured interval until the context is cancelled
func (e *Evictor) Run(ctx context.Context) {
	if e.maxCached <= 0 {
		e.log.Debugw("eviction disabled")
		return
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.log.Infow("evictor started",
		"max_cached", e.maxCached,
		"keep_active", e.keepActive,
		"interval", e.interval,
	)

	for {
		select {
		case <-ctx.Done():
			e.log.Infow("evictor stopped")
			return
		case <-ticker.C:
			e.Sweep()
		}
	}
}

// Sweep performs one eviction pass and returns the number of nodes
// uncached. The most recently used keepActive nodes are never evicted,
// even when the cache is over its ceiling.
func (e *Evictor) Sweep() int {
	if e.maxCached <= 0 {
		return 0
	}

	cached := e.arena.CachedByAge()
	over := len(cached) - e.maxCached
	if over <= 0 {
		return 0
	}

	evictable := cached
	if e.keepActive > 0 && e.keepActive < len(cached) {
		evictable = cached[:len(cached)-e.keepActive]
	}
	if over > len(evictable) {
		over = len(evictable)
	}

	for _, n := range evictable[:over] {
		n.Uncache()
		if e.ledger != nil {
			if err := e.ledger.RecordEvicted(n.Key()); err != nil {
				e.log.Warnw("ledger eviction write failed", "key", n.Key(), "error", err)
			}
		}
		e.log.Debugw("node evicted", "key", n.Key(), "last_used", n.LastUsed())
	}

	e.log.Infow("eviction sweep", "evicted", over, "cached", len(cached)-over)
	return over
}
