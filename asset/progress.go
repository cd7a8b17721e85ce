package asset

import (
	"sync"

	"github.com/Caboosey/mapillary-js/graph"
)

// progressTracker folds the two per-branch byte counts into combined
// snapshots for the caller. Each branch reports monotonically, so the sum
// is monotonic too; emission is serialized under the mutex to keep the
// non-decreasing order observable.
type progressTracker struct {
	mu         sync.Mutex
	onProgress ProgressFunc
	image      graph.LoadStatus
	mesh       graph.LoadStatus
}

func newProgressTracker(onProgress ProgressFunc) *progressTracker {
	return &progressTracker{onProgress: onProgress}
}

// imageProgress is the transport.ProgressFunc for the image branch
func (t *progressTracker) imageProgress(loaded, total int64) {
	t.mu.Lock()
	t.image = graph.LoadStatus{Loaded: loaded, Total: clampTotal(total)}
	t.emitLocked()
	t.mu.Unlock()
}

// meshProgress is the transport.ProgressFunc for the mesh branch
func (t *progressTracker) meshProgress(loaded, total int64) {
	t.mu.Lock()
	t.mesh = graph.LoadStatus{Loaded: loaded, Total: clampTotal(total)}
	t.emitLocked()
	t.mu.Unlock()
}

// imageDone records the final image byte counts
func (t *progressTracker) imageDone(status graph.LoadStatus) {
	t.mu.Lock()
	t.image = status
	t.emitLocked()
	t.mu.Unlock()
}

// meshDone records the final mesh byte counts
func (t *progressTracker) meshDone(status graph.LoadStatus) {
	t.mu.Lock()
	t.mesh = status
	t.emitLocked()
	t.mu.Unlock()
}

func (t *progressTracker) emitLocked() {
	if t.onProgress == nil {
		return
	}
	combined := t.image.Add(t.mesh)
	t.onProgress(Progress{Loaded: combined.Loaded, Total: combined.Total})
}

// clampTotal treats an unknown content length (-1) as zero so combined
// totals never go negative.
func clampTotal(total int64) int64 {
	if total < 0 {
		return 0
	}
	return total
}
