package graph

import (
	"image"
	"testing"
)

func mergeVersion(v int) *int { return &v }

func TestNodeDerivedFlags(t *testing.T) {
	tests := []struct {
		name     string
		meta     Meta
		pano     bool
		fullPano bool
		merged   bool
	}{
		{
			name: "perspective unmerged",
			meta: Meta{},
		},
		{
			name: "merged",
			meta: Meta{MergeVersion: mergeVersion(2)},

			merged: true,
		},
		{
			name: "merge version zero is not merged",
			meta: Meta{MergeVersion: mergeVersion(0)},
		},
		{
			name: "cropped pano",
			meta: Meta{Pano: &PanoInfo{
				FullWidth: 4096, FullHeight: 2048,
				CroppedWidth: 2048, CroppedHeight: 1024,
				CroppedAreaLeft: 512, CroppedAreaTop: 256,
			}},
			pano: true,
		},
		{
			name: "full pano",
			meta: Meta{Pano: &PanoInfo{
				FullWidth: 4096, FullHeight: 2048,
				CroppedWidth: 4096, CroppedHeight: 2048,
			}},
			pano:     true,
			fullPano: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNode("key", tt.meta)
			if n.Pano() != tt.pano {
				t.Errorf("Pano() = %v, want %v", n.Pano(), tt.pano)
			}
			if n.FullPano() != tt.fullPano {
				t.Errorf("FullPano() = %v, want %v", n.FullPano(), tt.fullPano)
			}
			if n.Merged() != tt.merged {
				t.Errorf("Merged() = %v, want %v", n.Merged(), tt.merged)
			}
		})
	}
}

// TestNodeLoadedInvariant tests that loaded holds exactly when the node is
// cached with a non-nil image.
func TestNodeLoadedInvariant(t *testing.T) {
	n := NewNode("key", Meta{})

	if n.Loaded() {
		t.Error("fresh node must not be loaded")
	}
	if n.Cached() {
		t.Error("fresh node must not be cached")
	}

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	n.SetAssets(img, EmptyMesh(), LoadStatus{Loaded: 100, Total: 100})

	if !n.Cached() || !n.Loaded() {
		t.Error("node with assets must be cached and loaded")
	}
	if n.Image() == nil || n.Mesh() == nil {
		t.Error("assets must be non-nil after SetAssets")
	}

	n.Uncache()

	if n.Cached() || n.Loaded() {
		t.Error("uncached node must be neither cached nor loaded")
	}
	if n.Image() != nil || n.Mesh() != nil {
		t.Error("assets must be nil after Uncache")
	}
	if n.LastCacheEvict().IsZero() {
		t.Error("Uncache must stamp lastCacheEvict")
	}
	if got := n.LoadStatus(); got.Loaded != 0 || got.Total != 0 {
		t.Errorf("Uncache must reset load status, got %+v", got)
	}
}

func TestNodeEdgesSetOnce(t *testing.T) {
	n := NewNode("key", Meta{})

	if n.Edges() != nil {
		t.Error("edges must be nil before assignment")
	}
	if n.EdgesSet() {
		t.Error("EdgesSet must be false before assignment")
	}

	edges := []Edge{{To: "other", Direction: DirectionStepForward}}
	if err := n.SetEdges(edges); err != nil {
		t.Fatalf("first SetEdges: %v", err)
	}
	if !n.EdgesSet() {
		t.Error("EdgesSet must be true after assignment")
	}

	if err := n.SetEdges(nil); err == nil {
		t.Error("second SetEdges must fail")
	}

	// Returned slice is a copy; mutating it must not affect the node
	got := n.Edges()
	got[0].To = "mutated"
	if n.Edges()[0].To != "other" {
		t.Error("Edges must return a defensive copy")
	}
}

func TestNodeTouch(t *testing.T) {
	n := NewNode("key", Meta{})

	if !n.LastUsed().IsZero() {
		t.Error("lastUsed must start zero")
	}

	n.Touch()
	first := n.LastUsed()
	if first.IsZero() {
		t.Error("Touch must stamp lastUsed")
	}

	n.Touch()
	if n.LastUsed().Before(first) {
		t.Error("lastUsed must be monotonic across touches")
	}
}

func TestMeshHelpers(t *testing.T) {
	empty := EmptyMesh()
	if !empty.Empty() {
		t.Error("EmptyMesh must report empty")
	}
	if empty.Vertices == nil || empty.Faces == nil {
		t.Error("empty mesh tables must be non-nil")
	}

	m := &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Faces:    []uint32{0, 1, 2},
	}
	if m.VertexCount() != 3 {
		t.Errorf("VertexCount = %d, want 3", m.VertexCount())
	}
	if m.FaceCount() != 1 {
		t.Errorf("FaceCount = %d, want 1", m.FaceCount())
	}
}

func TestLoadStatusAdd(t *testing.T) {
	sum := LoadStatus{Loaded: 100, Total: 200}.Add(LoadStatus{Loaded: 30, Total: 40})
	if sum.Loaded != 130 || sum.Total != 240 {
		t.Errorf("Add = %+v, want {130 240}", sum)
	}
}
