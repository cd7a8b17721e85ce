// Package viewer assembles the navigation stack from configuration: the
// arena, transport, asset loader, eviction worker and navigator, each
// tuned by the corresponding am.Config section.
package viewer

import (
	"time"

	"github.com/Caboosey/mapillary-js/am"
	"github.com/Caboosey/mapillary-js/asset"
	"github.com/Caboosey/mapillary-js/graph"
	"github.com/Caboosey/mapillary-js/logger"
	"github.com/Caboosey/mapillary-js/navigator"
	"github.com/Caboosey/mapillary-js/transport"
)

// Viewer is the composed navigation stack. The embedding application owns
// the arena contents and drives the Evictor's Run loop itself.
type Viewer struct {
	Arena     *graph.Arena
	Loader    *asset.Loader
	Navigator *navigator.Navigator
	Evictor   *asset.Evictor

	ledger *asset.Ledger
}

// New wires the stack from configuration. The arena may already hold
// nodes; an empty Ledger.Path disables cache persistence.
func New(cfg *am.Config, arena *graph.Arena) (*Viewer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Initialize(cfg.Log.JSON); err != nil {
		return nil, err
	}
	log := logger.Named("viewer")

	var ledger *asset.Ledger
	if cfg.Ledger.Path != "" {
		var err error
		ledger, err = asset.OpenLedger(cfg.Ledger.Path)
		if err != nil {
			return nil, err
		}
	}

	svc := transport.NewHTTPService(
		cfg.API.ImageBaseURL,
		cfg.API.MeshBaseURL,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second,
		log,
	)
	loader := asset.NewLoader(svc, svc, ledger, log)

	workers := 0
	if cfg.Prefetch.Enabled {
		workers = cfg.Prefetch.Workers
	}
	nav := navigator.New(arena, loader, ledger, navigator.Options{
		RequestsPerSec:  cfg.API.RequestsPerSec,
		Burst:           cfg.API.Burst,
		PrefetchWorkers: workers,
	}, log)

	evictor := asset.NewEvictor(
		arena,
		ledger,
		cfg.Cache.MaxCachedNodes,
		cfg.Cache.KeepActive,
		time.Duration(cfg.Cache.IntervalSeconds)*time.Second,
		log,
	)

	return &Viewer{
		Arena:     arena,
		Loader:    loader,
		Navigator: nav,
		Evictor:   evictor,
		ledger:    ledger,
	}, nil
}

// Close flushes pending prefetches and releases the ledger handle
func (v *Viewer) Close() error {
	v.Navigator.Wait()
	if v.ledger != nil {
		return v.ledger.Close()
	}
	return nil
}
