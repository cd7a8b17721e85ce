// Package transport fetches and decodes node assets over HTTP: compressed
// raster images and binary mesh payloads. It owns no retry or timeout
// policy beyond the configured client timeout; callers cancel through
// context.
package transport

import (
	"context"
	"image"

	"github.com/Caboosey/mapillary-js/graph"
)

// SizeClass selects the requested image resolution
type SizeClass int

const (
	// SizeStandard is the perspective capture resolution
	SizeStandard SizeClass = iota
	// SizePano is the larger target resolution for full panoramas
	SizePano
)

// Pixels returns the longest-edge pixel size requested for the class
func (s SizeClass) Pixels() int {
	if s == SizePano {
		return 2048
	}
	return 640
}

// ProgressFunc receives byte progress during a fetch. Counts are
// non-decreasing; total may be -1 when the payload length is unknown.
type ProgressFunc func(loaded, total int64)

// ImageService fetches and decodes a node's raster image
type ImageService interface {
	FetchImage(ctx context.Context, key string, size SizeClass, progress ProgressFunc) (image.Image, graph.LoadStatus, error)
}

// MeshService fetches and decodes a node's mesh. A non-success transport
// status resolves to the empty mesh rather than an error; mesh absence is
// not a failure.
type MeshService interface {
	FetchMesh(ctx context.Context, key string, progress ProgressFunc) (*graph.Mesh, graph.LoadStatus, error)
}
