package graph

import "math"

// Edge is a directed, typed connection from one node to another. Edges are
// owned by their source node and reference the target by key only, never by
// pointer, so the graph stays free of reference cycles.
type Edge struct {
	// To is the target node key
	To string `json:"to"`
	// Direction is the navigation intent this edge serves
	Direction EdgeDirection `json:"direction"`
	// WorldMotionAzimuth is the world-frame bearing in radians from the
	// source node toward the target. Defined for step and pano directions;
	// meaningless for Next/Prev.
	WorldMotionAzimuth float64 `json:"world_motion_azimuth"`
}

// LatLon is a geographic coordinate in degrees
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceSquared returns a squared equirectangular distance proxy in
// degrees between two coordinates. Monotone in true distance over
// viewer-scale extents, which is all nearest-node comparison needs.
func (ll LatLon) DistanceSquared(other LatLon) float64 {
	dLat := ll.Lat - other.Lat
	dLon := (ll.Lon - other.Lon) * math.Cos((ll.Lat+other.Lat)/2*math.Pi/180)
	return dLat*dLat + dLon*dLon
}

// Mesh holds decoded 3-D geometry for a node: a flat table of vertex
// coordinates (x, y, z triples) and a flat table of triangle vertex indices.
// The empty mesh (zero-length tables) is a valid cached state meaning
// "no geometry available".
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Faces    []uint32  `json:"faces"`
}

// EmptyMesh returns a mesh with no geometry. Distinct from a nil mesh,
// which means "not yet loaded".
func EmptyMesh() *Mesh {
	return &Mesh{Vertices: []float32{}, Faces: []uint32{}}
}

// Empty reports whether the mesh carries no geometry
func (m *Mesh) Empty() bool {
	return len(m.Vertices) == 0 && len(m.Faces) == 0
}

// VertexCount returns the number of vertices in the mesh
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// FaceCount returns the number of triangle faces in the mesh
func (m *Mesh) FaceCount() int {
	return len(m.Faces) / 3
}

// LoadStatus tracks bytes loaded and total across a node's asset fetches
type LoadStatus struct {
	Loaded int64 `json:"loaded"`
	Total  int64 `json:"total"`
}

// Add returns the element-wise sum of two load statuses
func (s LoadStatus) Add(o LoadStatus) LoadStatus {
	return LoadStatus{Loaded: s.Loaded + o.Loaded, Total: s.Total + o.Total}
}
