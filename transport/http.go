package transport

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"time"

	// Raster formats the image endpoint may serve
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/Caboosey/mapillary-js/errors"
	"github.com/Caboosey/mapillary-js/graph"
	"github.com/Caboosey/mapillary-js/internal/httpclient"
	"github.com/Caboosey/mapillary-js/logger"
	"go.uber.org/zap"
)

// HTTPService fetches node assets from the image and mesh endpoints.
// Implements ImageService and MeshService.
type HTTPService struct {
	imageBaseURL string
	meshBaseURL  string
	client       *httpclient.SaferClient
	log          *zap.SugaredLogger
}

// NewHTTPService builds a transport against the given endpoints. Requests
// go through an SSRF-guarded client that rejects private and loopback
// addresses.
func NewHTTPService(imageBaseURL, meshBaseURL string, timeout time.Duration, log *zap.SugaredLogger) *HTTPService {
	return NewHTTPServiceWithClient(imageBaseURL, meshBaseURL, httpclient.New(timeout), log)
}

// NewHTTPServiceWithClient builds a transport with a caller-supplied client.
// Use httpclient.NewWithOptions to reach asset servers on private networks.
// A nil log falls back to the global logger.
func NewHTTPServiceWithClient(imageBaseURL, meshBaseURL string, client *httpclient.SaferClient, log *zap.SugaredLogger) *HTTPService {
	if log == nil {
		log = logger.Logger
	}
	return &HTTPService{
		imageBaseURL: imageBaseURL,
		meshBaseURL:  meshBaseURL,
		client:       client,
		log:          log.Named("transport"),
	}
}

// FetchImage requests the node's raster at the given size class and decodes
// it. Transport and decode failures are both fatal here; the caller decides
// what is absorbable.
func (s *HTTPService) FetchImage(ctx context.Context, key string, size SizeClass, progress ProgressFunc) (image.Image, graph.LoadStatus, error) {
	u := fmt.Sprintf("%s/%s?size=%d", s.imageBaseURL, url.PathEscape(key), size.Pixels())

	body, total, err := s.get(ctx, u)
	if err != nil {
		return nil, graph.LoadStatus{}, err
	}
	defer body.Close()

	reader := newProgressReader(body, total, progress)
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, graph.LoadStatus{}, errors.Wrapf(errors.ErrDecode, "image for node %s: %v", key, err)
	}

	loaded := reader.Loaded()
	s.log.Debugw("image fetched",
		"key", key,
		"format", format,
		"bytes", loaded,
	)
	return img, graph.LoadStatus{Loaded: loaded, Total: loaded}, nil
}

// FetchMesh requests the node's binary mesh payload and decodes it. A
// non-2xx status resolves to the empty mesh with zero totals; only network
// and decode failures are reported as errors.
func (s *HTTPService) FetchMesh(ctx context.Context, key string, progress ProgressFunc) (*graph.Mesh, graph.LoadStatus, error) {
	u := fmt.Sprintf("%s/%s", s.meshBaseURL, url.PathEscape(key))

	if _, err := s.client.ValidateURL(u); err != nil {
		return nil, graph.LoadStatus{}, errors.Wrap(err, "mesh request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, graph.LoadStatus{}, errors.Wrap(err, "mesh request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, graph.LoadStatus{}, errors.Wrapf(errors.ErrTransport, "mesh for node %s: %v", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Debugw("no mesh available", "key", key, "status", resp.StatusCode)
		return graph.EmptyMesh(), graph.LoadStatus{}, nil
	}

	reader := newProgressReader(resp.Body, resp.ContentLength, progress)
	mesh, err := DecodeMesh(reader)
	if err != nil {
		return nil, graph.LoadStatus{}, errors.Wrapf(errors.ErrDecode, "mesh for node %s: %v", key, err)
	}

	loaded := reader.Loaded()
	return mesh, graph.LoadStatus{Loaded: loaded, Total: loaded}, nil
}

// get issues a GET and returns the body stream with its content length,
// mapping non-2xx statuses and network failures to transport errors.
func (s *HTTPService) get(ctx context.Context, u string) (io.ReadCloser, int64, error) {
	if _, err := s.client.ValidateURL(u); err != nil {
		return nil, 0, errors.Wrap(err, "build request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "build request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrapf(errors.ErrTransport, "%s: %v", u, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, errors.Wrapf(errors.ErrTransport, "%s: HTTP %d", u, resp.StatusCode)
	}

	return resp.Body, resp.ContentLength, nil
}
