// Package asset owns the node asset-cache lifecycle: concurrent,
// progress-reporting image and mesh fetches with partial-failure semantics,
// at-most-one in-flight fetch per node, and the eviction bookkeeping the
// cache-aging policy operates on.
package asset

import (
	"context"
	"image"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Caboosey/mapillary-js/errors"
	"github.com/Caboosey/mapillary-js/graph"
	"github.com/Caboosey/mapillary-js/logger"
	"github.com/Caboosey/mapillary-js/transport"
)

// State is the lifecycle state of a node's cache operation
type State int

const (
	// StatePending means no fetch has been started for the node
	StatePending State = iota
	// StateProgressing means a fetch is in flight
	StateProgressing
	// StateCompleted means assets are cached
	StateCompleted
	// StateFailed means the last fetch failed; a new call may retry
	StateFailed
)

// String returns the state name for logging
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProgressing:
		return "progressing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress is a combined byte-count snapshot for an in-flight cache
// operation, summed across the image and mesh fetches.
type Progress struct {
	Loaded int64 `json:"loaded"`
	Total  int64 `json:"total"`
}

// ProgressFunc observes combined progress during CacheAssets. Called from
// the fetch goroutines with snapshots in non-decreasing byte order; no
// calls are made after CacheAssets returns.
type ProgressFunc func(Progress)

// Loader turns node metadata into decoded image and mesh buffers, exactly
// once per node regardless of caller concurrency. Concurrent CacheAssets
// calls for the same key coalesce onto the single in-flight fetch and all
// observe its outcome.
type Loader struct {
	images transport.ImageService
	meshes transport.MeshService
	ledger *Ledger
	log    *zap.SugaredLogger

	group singleflight.Group

	mu     sync.Mutex
	states map[string]State
}

// NewLoader builds a loader over the given transports. The ledger is
// optional; nil disables cache bookkeeping persistence. A nil log falls
// back to the global logger.
func NewLoader(images transport.ImageService, meshes transport.MeshService, ledger *Ledger, log *zap.SugaredLogger) *Loader {
	if log == nil {
		log = logger.Logger
	}
	return &Loader{
		images: images,
		meshes: meshes,
		ledger: ledger,
		log:    log.Named("asset"),
		states: make(map[string]State),
	}
}

// State returns the cache lifecycle state for a node key
func (l *Loader) State(key string) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.states[key]
}

func (l *Loader) setState(key string, s State) {
	l.mu.Lock()
	l.states[key] = s
	l.mu.Unlock()
}

// CacheAssets fetches the node's image and mesh concurrently, reporting
// combined progress, and installs both atomically on completion. The call
// blocks until both branches reach a terminal state.
//
// Image failure (transport or decode) is fatal and propagated. Mesh
// failure is absorbed: the node degrades to the empty mesh, logged at Warn
// so transient transport trouble remains distinguishable from true absence.
// Unmerged nodes short-circuit to the empty mesh with zero totals and no
// transport call.
//
// Already-cached nodes return immediately; the operation is idempotent.
func (l *Loader) CacheAssets(ctx context.Context, n *graph.Node, onProgress ProgressFunc) error {
	if n.Loaded() {
		return nil
	}

	_, err, _ := l.group.Do(n.Key(), func() (interface{}, error) {
		return nil, l.fetch(ctx, n, onProgress)
	})
	return err
}

func (l *Loader) fetch(ctx context.Context, n *graph.Node, onProgress ProgressFunc) error {
	fetchID := uuid.NewString()
	log := l.log.With("key", n.Key(), "fetch_id", fetchID)

	l.setState(n.Key(), StateProgressing)
	log.Debugw("caching assets", "pano", n.Pano(), "merged", n.Merged())

	tracker := newProgressTracker(onProgress)

	var img imageResult
	var mesh meshResult
	g, fetchCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		size := transport.SizeStandard
		if n.FullPano() {
			size = transport.SizePano
		}

		decoded, status, err := l.images.FetchImage(fetchCtx, n.Key(), size, tracker.imageProgress)
		if err != nil {
			return errors.Wrapf(err, "cache assets for node %s", n.Key())
		}
		img.image = decoded
		img.status = status
		tracker.imageDone(status)
		return nil
	})

	g.Go(func() error {
		if !n.Merged() {
			// Deliberate short-circuit: unmerged nodes have no geometry
			// and never hit the network
			mesh.mesh = graph.EmptyMesh()
			return nil
		}

		decoded, status, err := l.meshes.FetchMesh(fetchCtx, n.Key(), tracker.meshProgress)
		if err != nil {
			// Absorbed: mesh absence is non-fatal, but keep the cause
			// visible so transport failure is distinguishable from a
			// node that truly has no geometry
			log.Warnw("mesh fetch failed, degrading to empty mesh", "error", err)
			mesh.mesh = graph.EmptyMesh()
			mesh.status = graph.LoadStatus{}
			return nil
		}
		mesh.mesh = decoded
		mesh.status = status
		tracker.meshDone(status)
		return nil
	})

	if err := g.Wait(); err != nil {
		l.setState(n.Key(), StateFailed)
		if ctx.Err() != nil {
			err = errors.Wrap(errors.ErrCancelled, err.Error())
		}
		log.Errorw("asset cache failed", "error", err)
		return err
	}

	combined := img.status.Add(mesh.status)
	n.SetAssets(img.image, mesh.mesh, combined)
	l.setState(n.Key(), StateCompleted)

	if l.ledger != nil {
		if err := l.ledger.RecordCached(n.Key(), combined); err != nil {
			log.Warnw("cache ledger write failed", "error", err)
		}
	}

	log.Infow("assets cached",
		"loaded", combined.Loaded,
		"total", combined.Total,
		"mesh_vertices", mesh.mesh.VertexCount(),
	)
	return nil
}

type imageResult struct {
	image  image.Image
	status graph.LoadStatus
}

type meshResult struct {
	mesh   *graph.Mesh
	status graph.LoadStatus
}
