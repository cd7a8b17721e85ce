package graph

import (
	"math"
	"sort"
	"sync"

	"github.com/Caboosey/mapillary-js/errors"
)

// Arena owns every node in the graph, indexed by key. Nodes may be shared
// across sequences; edges reference targets by key through the arena, so
// node ownership stays acyclic.
type Arena struct {
	mu        sync.RWMutex
	nodes     map[string]*Node
	sequences map[string]Sequence
}

// NewArena returns an empty node arena
func NewArena() *Arena {
	return &Arena{
		nodes:     make(map[string]*Node),
		sequences: make(map[string]Sequence),
	}
}

// Add inserts a node, wiring it to its sequence if already registered.
// Adding a key twice is a conflict.
func (a *Arena) Add(n *Node) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.nodes[n.Key()]; exists {
		return errors.Newf("node %s already in arena", n.Key())
	}
	a.nodes[n.Key()] = n
	if seq, ok := a.sequences[n.SequenceKey()]; ok {
		n.SetSequence(seq)
	}
	return nil
}

// AddSequence registers a sequence and attaches it to member nodes already
// present in the arena.
func (a *Arena) AddSequence(seq Sequence) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sequences[seq.Key()] = seq
	for _, n := range a.nodes {
		if n.SequenceKey() == seq.Key() {
			n.SetSequence(seq)
		}
	}
}

// Node returns the node for key, or an ErrNotFound error
func (a *Arena) Node(key string) (*Node, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, ok := a.nodes[key]
	if !ok {
		return nil, errors.NewNotFoundError("node %q", key)
	}
	return n, nil
}

// Has reports whether the arena holds a node for key
func (a *Arena) Has(key string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.nodes[key]
	return ok
}

// Len returns the number of nodes in the arena
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

// CachedByAge returns all cached nodes ordered oldest lastUsed first.
// This is the scan order eviction policy works through.
func (a *Arena) CachedByAge() []*Node {
	a.mu.RLock()
	cached := make([]*Node, 0, len(a.nodes))
	for _, n := range a.nodes {
		if n.Cached() {
			cached = append(cached, n)
		}
	}
	a.mu.RUnlock()

	sort.Slice(cached, func(i, j int) bool {
		ti, tj := cached[i].LastUsed(), cached[j].LastUsed()
		if ti.Equal(tj) {
			return cached[i].Key() < cached[j].Key()
		}
		return ti.Before(tj)
	})
	return cached
}

// Closest returns the worthy node nearest to the given position, or an
// ErrNotFound error when the arena holds no worthy nodes. Ties break on
// key order so the result is deterministic.
func (a *Arena) Closest(latLon LatLon) (*Node, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var best *Node
	bestDist := math.Inf(1)
	for _, n := range a.nodes {
		if !n.Worthy() {
			continue
		}
		d := latLon.DistanceSquared(n.LatLon())
		if d < bestDist || (d == bestDist && best != nil && n.Key() < best.Key()) {
			best = n
			bestDist = d
		}
	}
	if best == nil {
		return nil, errors.NewNotFoundError("no worthy node near %v", latLon)
	}
	return best, nil
}

// Worthy returns the keys of nodes eligible for navigation
func (a *Arena) Worthy() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	keys := make([]string, 0, len(a.nodes))
	for key, n := range a.nodes {
		if n.Worthy() {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
