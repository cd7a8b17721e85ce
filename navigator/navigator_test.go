package navigator

import (
	"context"
	"image"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Caboosey/mapillary-js/asset"
	"github.com/Caboosey/mapillary-js/errors"
	"github.com/Caboosey/mapillary-js/graph"
	"github.com/Caboosey/mapillary-js/transport"
)

// stubTransport serves tiny assets for any key and counts image fetches
type stubTransport struct {
	mu     sync.Mutex
	images int
}

func (s *stubTransport) FetchImage(ctx context.Context, key string, size transport.SizeClass, progress transport.ProgressFunc) (image.Image, graph.LoadStatus, error) {
	s.mu.Lock()
	s.images++
	s.mu.Unlock()
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), graph.LoadStatus{Loaded: 10, Total: 10}, nil
}

func (s *stubTransport) FetchMesh(ctx context.Context, key string, progress transport.ProgressFunc) (*graph.Mesh, graph.LoadStatus, error) {
	return graph.EmptyMesh(), graph.LoadStatus{}, nil
}

func (s *stubTransport) imageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images
}

// testGraph builds a three-node sequence A -> B -> C where A has a forward
// edge to B (azimuth 5 degrees) and a turn-left edge to C.
func testGraph(t *testing.T) *graph.Arena {
	t.Helper()
	arena := graph.NewArena()

	require.NoError(t, arena.Add(graph.NewNode("A", graph.Meta{CA: 0, SequenceKey: "s1"})))
	require.NoError(t, arena.Add(graph.NewNode("B", graph.Meta{CA: 5, SequenceKey: "s1"})))
	require.NoError(t, arena.Add(graph.NewNode("C", graph.Meta{CA: 90, SequenceKey: "s1"})))
	arena.AddSequence(graph.NewMemorySequence("s1", []string{"A", "B", "C"}))

	a, _ := arena.Node("A")
	require.NoError(t, a.SetEdges([]graph.Edge{
		{To: "B", Direction: graph.DirectionStepForward, WorldMotionAzimuth: 5 * math.Pi / 180},
		{To: "C", Direction: graph.DirectionTurnLeft, WorldMotionAzimuth: math.Pi / 2},
	}))
	return arena
}

func newTestNavigator(t *testing.T, arena *graph.Arena, ledger *asset.Ledger, opts Options) (*Navigator, *stubTransport) {
	t.Helper()
	svc := &stubTransport{}
	loader := asset.NewLoader(svc, svc, ledger, zap.NewNop().Sugar())
	return New(arena, loader, ledger, opts, zap.NewNop().Sugar()), svc
}

func TestMoveToKey(t *testing.T) {
	arena := testGraph(t)
	nav, svc := newTestNavigator(t, arena, nil, Options{})

	n, err := nav.MoveToKey(context.Background(), "A", nil)
	require.NoError(t, err)
	assert.Equal(t, "A", n.Key())
	assert.True(t, n.Loaded())
	assert.False(t, n.LastUsed().IsZero())
	assert.Equal(t, n, nav.Current())
	assert.Equal(t, 1, svc.imageCount())
}

func TestMoveToKeyUnknown(t *testing.T) {
	arena := testGraph(t)
	nav, _ := newTestNavigator(t, arena, nil, Options{})

	_, err := nav.MoveToKey(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.Nil(t, nav.Current())
}

func TestMoveDirRequiresActiveNode(t *testing.T) {
	arena := testGraph(t)
	nav, _ := newTestNavigator(t, arena, nil, Options{})

	_, err := nav.MoveDir(context.Background(), graph.DirectionStepForward, nil)
	require.Error(t, err)
}

func TestMoveDirStepForward(t *testing.T) {
	arena := testGraph(t)
	nav, _ := newTestNavigator(t, arena, nil, Options{})

	_, err := nav.MoveToKey(context.Background(), "A", nil)
	require.NoError(t, err)

	n, err := nav.MoveDir(context.Background(), graph.DirectionStepForward, nil)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "B", n.Key())
}

func TestMoveCloseTo(t *testing.T) {
	arena := graph.NewArena()
	near := graph.NewNode("near", graph.Meta{LatLon: graph.LatLon{Lat: 52.0001, Lon: 13.0001}})
	far := graph.NewNode("far", graph.Meta{LatLon: graph.LatLon{Lat: 52.01, Lon: 13.01}})
	near.SetWorthy(true)
	far.SetWorthy(true)
	require.NoError(t, arena.Add(near))
	require.NoError(t, arena.Add(far))

	nav, _ := newTestNavigator(t, arena, nil, Options{})

	n, err := nav.MoveCloseTo(context.Background(), graph.LatLon{Lat: 52.0, Lon: 13.0}, nil)
	require.NoError(t, err)
	assert.Equal(t, "near", n.Key())
	assert.Equal(t, n, nav.Current())
}

func TestMoveCloseToEmptyArena(t *testing.T) {
	nav, _ := newTestNavigator(t, graph.NewArena(), nil, Options{})

	_, err := nav.MoveCloseTo(context.Background(), graph.LatLon{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

// TestMoveDirMiss tests that an unmatched intent is a legitimate no-move
// outcome, not an error.
func TestMoveDirMiss(t *testing.T) {
	arena := testGraph(t)
	nav, _ := newTestNavigator(t, arena, nil, Options{})

	_, err := nav.MoveToKey(context.Background(), "A", nil)
	require.NoError(t, err)

	n, err := nav.MoveDir(context.Background(), graph.DirectionStepBackward, nil)
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Equal(t, "A", nav.Current().Key())
}

func TestMoveDirSequence(t *testing.T) {
	arena := testGraph(t)
	nav, _ := newTestNavigator(t, arena, nil, Options{})

	_, err := nav.MoveToKey(context.Background(), "B", nil)
	require.NoError(t, err)

	next, err := nav.MoveDir(context.Background(), graph.DirectionNext, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "C", next.Key())

	prev, err := nav.MoveDir(context.Background(), graph.DirectionPrev, nil)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "B", prev.Key())

	// At the start of the sequence there is no predecessor
	_, err = nav.MoveToKey(context.Background(), "A", nil)
	require.NoError(t, err)
	none, err := nav.MoveDir(context.Background(), graph.DirectionPrev, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPrefetchNeighbors(t *testing.T) {
	arena := testGraph(t)
	nav, svc := newTestNavigator(t, arena, nil, Options{PrefetchWorkers: 2})

	a, err := nav.MoveToKey(context.Background(), "A", nil)
	require.NoError(t, err)
	nav.Wait()

	// Already-loaded neighbors are skipped, so an explicit call after the
	// automatic one fetches nothing new
	nav.PrefetchNeighbors(context.Background(), a)

	for _, key := range []string{"B", "C"} {
		n, _ := arena.Node(key)
		assert.True(t, n.Loaded(), "neighbor %s should be prefetched", key)
	}
	// A itself plus two distinct neighbors (edge targets and the sequence
	// successor overlap)
	assert.Equal(t, 3, svc.imageCount())
}

// TestMoveTriggersPrefetch tests that a successful move warms the new
// node's neighbors in the background without another call.
func TestMoveTriggersPrefetch(t *testing.T) {
	arena := testGraph(t)
	nav, _ := newTestNavigator(t, arena, nil, Options{PrefetchWorkers: 2})

	_, err := nav.MoveToKey(context.Background(), "A", nil)
	require.NoError(t, err)
	nav.Wait()

	for _, key := range []string{"B", "C"} {
		n, _ := arena.Node(key)
		assert.True(t, n.Loaded(), "neighbor %s should be warmed by the move", key)
	}
}

func TestPrefetchDisabled(t *testing.T) {
	arena := testGraph(t)
	nav, svc := newTestNavigator(t, arena, nil, Options{})

	a, err := nav.MoveToKey(context.Background(), "A", nil)
	require.NoError(t, err)

	nav.PrefetchNeighbors(context.Background(), a)
	assert.Equal(t, 1, svc.imageCount())
}

func TestWarmFromLedger(t *testing.T) {
	ledger, err := asset.OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer ledger.Close()

	require.NoError(t, ledger.RecordUsed("B"))
	require.NoError(t, ledger.RecordUsed("C"))

	arena := testGraph(t)
	nav, _ := newTestNavigator(t, arena, ledger, Options{PrefetchWorkers: 2})

	require.NoError(t, nav.Warm(context.Background(), 10))

	for _, key := range []string{"B", "C"} {
		n, _ := arena.Node(key)
		assert.True(t, n.Loaded(), "warmed node %s should be cached", key)
	}
}

// TestConcurrentMoves tests that racing moves and reads of the active node
// are safe: moves serialize and the final active node is one of the targets.
func TestConcurrentMoves(t *testing.T) {
	arena := testGraph(t)
	nav, _ := newTestNavigator(t, arena, nil, Options{})

	var wg sync.WaitGroup
	for _, key := range []string{"A", "B", "C"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, err := nav.MoveToKey(context.Background(), key, nil)
			assert.NoError(t, err)
		}(key)
	}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			nav.Current()
		}()
	}
	wg.Wait()

	final := nav.Current()
	require.NotNil(t, final)
	assert.Contains(t, []string{"A", "B", "C"}, final.Key())
}

func TestMoveWithRateLimiter(t *testing.T) {
	arena := testGraph(t)
	nav, _ := newTestNavigator(t, arena, nil, Options{RequestsPerSec: 100, Burst: 5})

	n, err := nav.MoveToKey(context.Background(), "A", nil)
	require.NoError(t, err)
	assert.True(t, n.Loaded())
}
