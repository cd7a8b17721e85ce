// Package graph models the navigation graph of a street-level image viewer:
// captured viewpoints (nodes) connected by directional edges, with per-node
// asset cache state and the edge selection used to traverse the graph.
package graph

import (
	"image"
	"sync"
	"time"

	"github.com/Caboosey/mapillary-js/errors"
	"github.com/Caboosey/mapillary-js/spatial"
)

// PanoInfo describes the spherical coverage of a panoramic capture.
// A nil PanoInfo on a node means the capture is perspective.
type PanoInfo struct {
	FullWidth       int `json:"full_width"`
	FullHeight      int `json:"full_height"`
	CroppedWidth    int `json:"cropped_width"`
	CroppedHeight   int `json:"cropped_height"`
	CroppedAreaLeft int `json:"cropped_area_left"`
	CroppedAreaTop  int `json:"cropped_area_top"`
}

// Full reports whether the panorama covers the complete sphere with no crop
func (p *PanoInfo) Full() bool {
	return p.CroppedAreaLeft == 0 &&
		p.CroppedAreaTop == 0 &&
		p.CroppedWidth == p.FullWidth &&
		p.CroppedHeight == p.FullHeight
}

// Meta holds the immutable capture metadata a node is constructed with.
// Optional fields are pointers so "confirmed absent" is distinguishable
// from "not provided".
type Meta struct {
	// CA is the capture bearing angle in degrees
	CA float64
	// LatLon is the geographic coordinate of the capture
	LatLon LatLon
	// Rotation is the camera pose rotation in axis-angle form
	Rotation spatial.Vec3
	// Translation is the camera pose translation
	Translation spatial.Vec3
	// MergeVersion is set when the node has associated 3-D mesh data.
	// Nil means the node was never merged and no mesh fetch is attempted.
	MergeVersion *int
	// Pano is set for spherical captures
	Pano *PanoInfo
	// SequenceKey identifies the ordered capture path this node belongs to
	SequenceKey string
}

// Node is a graph vertex representing one captured viewpoint. It owns at
// most one cached image and mesh, its outgoing edge list, and the usage
// timestamps eviction policy operates on.
//
// The zero cache state is: nil image, nil mesh, not cached. Edges are nil
// until assigned exactly once by the graph builder.
type Node struct {
	key  string
	meta Meta

	mu             sync.RWMutex
	seq            Sequence
	worthy         bool
	edges          []Edge
	edgesSet       bool
	image          image.Image
	mesh           *Mesh
	loadStatus     LoadStatus
	cached         bool
	lastUsed       time.Time
	lastCacheEvict time.Time
}

// NewNode constructs a node with immutable metadata and empty cache state
func NewNode(key string, meta Meta) *Node {
	return &Node{key: key, meta: meta}
}

// Key returns the node's unique key
func (n *Node) Key() string { return n.key }

// CA returns the capture bearing angle in degrees
func (n *Node) CA() float64 { return n.meta.CA }

// LatLon returns the geographic coordinate of the capture
func (n *Node) LatLon() LatLon { return n.meta.LatLon }

// Rotation returns the camera pose rotation in axis-angle form
func (n *Node) Rotation() spatial.Vec3 { return n.meta.Rotation }

// Translation returns the camera pose translation
func (n *Node) Translation() spatial.Vec3 { return n.meta.Translation }

// SequenceKey returns the key of the sequence this node was captured in
func (n *Node) SequenceKey() string { return n.meta.SequenceKey }

// Pano reports whether the node is a spherical capture
func (n *Node) Pano() bool { return n.meta.Pano != nil }

// FullPano reports whether the node is an uncropped full spherical capture
func (n *Node) FullPano() bool {
	return n.meta.Pano != nil && n.meta.Pano.Full()
}

// Merged reports whether the node has associated 3-D mesh data. Unmerged
// nodes always resolve their mesh to the empty mesh without a fetch.
func (n *Node) Merged() bool {
	return n.meta.MergeVersion != nil && *n.meta.MergeVersion > 0
}

// OpticalCenter returns the camera center in world space derived from the
// node's pose.
func (n *Node) OpticalCenter() spatial.Vec3 {
	return spatial.OpticalCenter(n.meta.Rotation, n.meta.Translation)
}

// ViewingDirection returns the world-space direction the node's camera faces
func (n *Node) ViewingDirection() spatial.Vec3 {
	return spatial.ViewingDirection(n.meta.Rotation)
}

// Worthy reports whether the node is eligible for navigation. Worthiness is
// determined externally by the graph builder.
func (n *Node) Worthy() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.worthy
}

// SetWorthy marks the node's navigation eligibility
func (n *Node) SetWorthy(worthy bool) {
	n.mu.Lock()
	n.worthy = worthy
	n.mu.Unlock()
}

// SetSequence attaches the sequence collaborator used for Next/Prev lookups
func (n *Node) SetSequence(seq Sequence) {
	n.mu.Lock()
	n.seq = seq
	n.mu.Unlock()
}

// FindNextKeyInSequence returns the key of the node following this one in
// its sequence, or "" if the node has no sequence or is at the boundary.
func (n *Node) FindNextKeyInSequence() string {
	n.mu.RLock()
	seq := n.seq
	n.mu.RUnlock()
	if seq == nil {
		return ""
	}
	return seq.Next(n.key)
}

// FindPrevKeyInSequence returns the key of the node preceding this one in
// its sequence, or "" if the node has no sequence or is at the boundary.
func (n *Node) FindPrevKeyInSequence() string {
	n.mu.RLock()
	seq := n.seq
	n.mu.RUnlock()
	if seq == nil {
		return ""
	}
	return seq.Prev(n.key)
}

// SetEdges assigns the node's outgoing edges. The edge list is set exactly
// once by the graph builder; a second assignment is an error. Edge order is
// part of the selection contract and is preserved as given.
func (n *Node) SetEdges(edges []Edge) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.edgesSet {
		return errors.Wrapf(errors.ErrEdgesSet, "node %s", n.key)
	}
	n.edges = edges
	n.edgesSet = true
	return nil
}

// Edges returns the node's outgoing edges in assignment order, or nil if
// the graph builder has not assigned them yet.
func (n *Node) Edges() []Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.edges == nil {
		return nil
	}
	out := make([]Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// EdgesSet reports whether the graph builder has assigned the edge list
func (n *Node) EdgesSet() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.edgesSet
}

// Image returns the decoded raster, or nil if not cached
func (n *Node) Image() image.Image {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.image
}

// Mesh returns the decoded mesh, or nil if not cached. A non-nil empty
// mesh means "cached, no geometry available".
func (n *Node) Mesh() *Mesh {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.mesh
}

// LoadStatus returns the combined bytes loaded/total across the node's
// asset fetches.
func (n *Node) LoadStatus() LoadStatus {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.loadStatus
}

// Cached reports whether the node's assets are present
func (n *Node) Cached() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cached
}

// Loaded reports whether the node is ready to render: cached with a
// non-nil image.
func (n *Node) Loaded() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cached && n.image != nil
}

// SetAssets atomically installs the decoded image and mesh along with the
// combined load status, transitioning the node to cached. Called once per
// successful cache operation.
func (n *Node) SetAssets(img image.Image, mesh *Mesh, status LoadStatus) {
	n.mu.Lock()
	n.image = img
	n.mesh = mesh
	n.loadStatus = status
	n.cached = true
	n.mu.Unlock()
}

// Touch stamps the node as the active node for cache-aging purposes
func (n *Node) Touch() {
	n.mu.Lock()
	n.lastUsed = time.Now()
	n.mu.Unlock()
}

// LastUsed returns when the node was last the active node
func (n *Node) LastUsed() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.lastUsed
}

// Uncache discards the node's assets and stamps the eviction time. Invoked
// by eviction policy, never by the cache operation itself.
func (n *Node) Uncache() {
	n.mu.Lock()
	n.image = nil
	n.mesh = nil
	n.loadStatus = LoadStatus{}
	n.cached = false
	n.lastCacheEvict = time.Now()
	n.mu.Unlock()
}

// LastCacheEvict returns when the node's assets were last evicted
func (n *Node) LastCacheEvict() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.lastCacheEvict
}
