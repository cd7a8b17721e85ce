package viewer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Caboosey/mapillary-js/am"
	"github.com/Caboosey/mapillary-js/graph"
)

func testConfig(t *testing.T) *am.Config {
	t.Helper()
	return &am.Config{
		API: am.APIConfig{
			ImageBaseURL:   "https://images.example.com",
			MeshBaseURL:    "https://meshes.example.com",
			TimeoutSeconds: 5,
			RequestsPerSec: 10,
			Burst:          2,
		},
		Cache: am.CacheConfig{
			MaxCachedNodes:  10,
			IntervalSeconds: 1,
			KeepActive:      2,
		},
		Prefetch: am.PrefetchConfig{Workers: 2, Enabled: true},
		Ledger:   am.LedgerConfig{Path: filepath.Join(t.TempDir(), "viewer.db")},
	}
}

func TestNew(t *testing.T) {
	v, err := New(testConfig(t), graph.NewArena())
	require.NoError(t, err)
	defer v.Close()

	assert.NotNil(t, v.Arena)
	assert.NotNil(t, v.Loader)
	assert.NotNil(t, v.Navigator)
	assert.NotNil(t, v.Evictor)
}

func TestNewWithoutLedger(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ledger.Path = ""

	v, err := New(cfg, graph.NewArena())
	require.NoError(t, err)
	require.NoError(t, v.Close())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.TimeoutSeconds = 0

	_, err := New(cfg, graph.NewArena())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout_seconds")
}

func TestNewFromLoadedDefaults(t *testing.T) {
	am.Reset()
	t.Cleanup(am.Reset)

	cfg, err := am.Load()
	require.NoError(t, err)
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "viewer.db")

	v, err := New(cfg, graph.NewArena())
	require.NoError(t, err)
	require.NoError(t, v.Close())
}
