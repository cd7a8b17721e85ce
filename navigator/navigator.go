// Package navigator orchestrates movement through the viewpoint graph:
// selecting edges for navigation intents, driving node asset caching, and
// prefetching navigable neighbors.
package navigator

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Caboosey/mapillary-js/asset"
	"github.com/Caboosey/mapillary-js/errors"
	"github.com/Caboosey/mapillary-js/graph"
	"github.com/Caboosey/mapillary-js/logger"
	"github.com/Caboosey/mapillary-js/spatial"
)

// Options tunes navigator behavior
type Options struct {
	// RequestsPerSec paces cache fetches; 0 means unlimited
	RequestsPerSec int
	// Burst is the rate limiter burst size
	Burst int
	// PrefetchWorkers bounds concurrent neighbor fetches; 0 disables
	// prefetching
	PrefetchWorkers int
}

// Navigator moves through the graph one node at a time. It serializes
// moves on its own mutex; asset fetch deduplication is handled by the
// loader, so prefetches racing a move for the same node are safe. When
// PrefetchWorkers is set, each successful move triggers a background
// prefetch of the new node's navigable neighbors; Wait flushes them.
type Navigator struct {
	arena   *graph.Arena
	loader  *asset.Loader
	ledger  *asset.Ledger
	limiter *rate.Limiter
	opts    Options
	log     *zap.SugaredLogger

	// moveMu serializes moves end to end; mu guards current so readers
	// never block behind an in-flight fetch
	moveMu     sync.Mutex
	mu         sync.RWMutex
	current    *graph.Node
	prefetches sync.WaitGroup
}

// New builds a navigator over the arena and loader. The ledger is optional.
// A nil log falls back to the global logger.
func New(arena *graph.Arena, loader *asset.Loader, ledger *asset.Ledger, opts Options, log *zap.SugaredLogger) *Navigator {
	if log == nil {
		log = logger.Logger
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst)
	}
	return &Navigator{
		arena:   arena,
		loader:  loader,
		ledger:  ledger,
		limiter: limiter,
		opts:    opts,
		log:     log.Named("navigator"),
	}
}

// Current returns the active node, or nil before the first move
func (nav *Navigator) Current() *graph.Node {
	nav.mu.RLock()
	defer nav.mu.RUnlock()
	return nav.current
}

// MoveToKey makes the node with the given key the active node, caching its
// assets first. The optional onProgress observes combined fetch progress.
// Concurrent moves are serialized in arrival order.
func (nav *Navigator) MoveToKey(ctx context.Context, key string, onProgress asset.ProgressFunc) (*graph.Node, error) {
	nav.moveMu.Lock()
	defer nav.moveMu.Unlock()

	n, err := nav.arena.Node(key)
	if err != nil {
		return nil, err
	}

	if err := nav.wait(ctx); err != nil {
		return nil, err
	}
	if err := nav.loader.CacheAssets(ctx, n, onProgress); err != nil {
		return nil, errors.Wrapf(err, "move to %s", key)
	}

	n.Touch()
	nav.mu.Lock()
	nav.current = n
	nav.mu.Unlock()
	if nav.ledger != nil {
		if err := nav.ledger.RecordUsed(key); err != nil {
			nav.log.Warnw("ledger use write failed", "key", key, "error", err)
		}
	}

	if nav.opts.PrefetchWorkers > 0 {
		nav.prefetches.Add(1)
		go func() {
			defer nav.prefetches.Done()
			nav.PrefetchNeighbors(context.Background(), n)
		}()
	}

	nav.log.Infow("moved", "key", key, "pano", n.Pano())
	return n, nil
}

// MoveDir moves along the edge best matching the navigation intent. A nil
// node with nil error means no edge matched the intent; that is a
// legitimate terminal outcome, not a failure.
func (nav *Navigator) MoveDir(ctx context.Context, direction graph.EdgeDirection, onProgress asset.ProgressFunc) (*graph.Node, error) {
	current := nav.Current()
	if current == nil {
		return nil, errors.New("no active node to navigate from")
	}

	key := graph.SelectKey(current, direction, desiredAngle(current, direction))
	if key == "" {
		nav.log.Debugw("no edge for intent",
			"from", current.Key(),
			"direction", direction.String(),
		)
		return nil, nil
	}

	return nav.MoveToKey(ctx, key, onProgress)
}

// MoveCloseTo moves to the worthy node nearest the given position
func (nav *Navigator) MoveCloseTo(ctx context.Context, latLon graph.LatLon, onProgress asset.ProgressFunc) (*graph.Node, error) {
	n, err := nav.arena.Closest(latLon)
	if err != nil {
		return nil, err
	}
	return nav.MoveToKey(ctx, n.Key(), onProgress)
}

// desiredAngle derives the world-frame bearing a navigation intent aims
// toward: the node's capture bearing plus the intent's angular offset.
func desiredAngle(n *graph.Node, direction graph.EdgeDirection) float64 {
	bearing := n.CA() * math.Pi / 180
	if offset, ok := direction.Offset(); ok {
		bearing += offset
	}
	return spatial.WrapAngle(bearing)
}

// PrefetchNeighbors warms the cache for every node reachable from n by one
// navigation step. Failures are absorbed; prefetching is best-effort.
func (nav *Navigator) PrefetchNeighbors(ctx context.Context, n *graph.Node) {
	if nav.opts.PrefetchWorkers <= 0 {
		return
	}

	keys := neighborKeys(n)
	if len(keys) == 0 {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(nav.opts.PrefetchWorkers)

	for _, key := range keys {
		key := key
		g.Go(func() error {
			neighbor, err := nav.arena.Node(key)
			if err != nil {
				return nil
			}
			if neighbor.Loaded() {
				return nil
			}
			if err := nav.wait(ctx); err != nil {
				return nil
			}
			if err := nav.loader.CacheAssets(ctx, neighbor, nil); err != nil {
				nav.log.Debugw("prefetch failed", "key", key, "error", err)
			}
			return nil
		})
	}
	g.Wait()
}

// Warm prefetches the most recently used nodes recorded in the ledger,
// typically after a restart.
func (nav *Navigator) Warm(ctx context.Context, limit int) error {
	if nav.ledger == nil || nav.opts.PrefetchWorkers <= 0 {
		return nil
	}

	keys, err := nav.ledger.WarmKeys(limit)
	if err != nil {
		return errors.Wrap(err, "warm cache")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(nav.opts.PrefetchWorkers)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			n, err := nav.arena.Node(key)
			if err != nil {
				return nil
			}
			if err := nav.wait(ctx); err != nil {
				return nil
			}
			if err := nav.loader.CacheAssets(ctx, n, nil); err != nil {
				nav.log.Debugw("warm fetch failed", "key", key, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Wait blocks until background prefetches triggered by moves have finished
func (nav *Navigator) Wait() {
	nav.prefetches.Wait()
}

// wait blocks on the transport rate limiter if one is configured
func (nav *Navigator) wait(ctx context.Context) error {
	if nav.limiter == nil {
		return nil
	}
	return nav.limiter.Wait(ctx)
}

// neighborKeys collects the distinct keys one navigation step away from n:
// edge targets plus sequence successor and predecessor.
func neighborKeys(n *graph.Node) []string {
	seen := make(map[string]struct{})
	var keys []string

	add := func(key string) {
		if key == "" || key == n.Key() {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	for _, edge := range n.Edges() {
		add(edge.To)
	}
	add(n.FindNextKeyInSequence())
	add(n.FindPrevKeyInSequence())
	return keys
}
