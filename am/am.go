package am

// Config represents the core viewer configuration
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Prefetch PrefetchConfig `mapstructure:"prefetch"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig configures the asset transport endpoints
type APIConfig struct {
	ImageBaseURL   string `mapstructure:"image_base_url"`   // e.g. "https://images.example.com"
	MeshBaseURL    string `mapstructure:"mesh_base_url"`    // e.g. "https://meshes.example.com"
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`  // Per-request transport timeout
	RequestsPerSec int    `mapstructure:"requests_per_sec"` // Transport rate limit (0 = unlimited)
	Burst          int    `mapstructure:"burst"`            // Rate limiter burst size
}

// CacheConfig configures asset cache eviction
type CacheConfig struct {
	MaxCachedNodes  int `mapstructure:"max_cached_nodes"`  // Eviction ceiling; 0 = no eviction
	IntervalSeconds int `mapstructure:"interval_seconds"`  // How often the eviction pass runs
	KeepActive      int `mapstructure:"keep_active"`       // Most-recently-used nodes never evicted
}

// PrefetchConfig configures background prefetching of navigable neighbors
type PrefetchConfig struct {
	Workers int  `mapstructure:"workers"` // Concurrent neighbor fetches (default: 2)
	Enabled bool `mapstructure:"enabled"`
}

// LedgerConfig configures the SQLite cache bookkeeping store
type LedgerConfig struct {
	Path string `mapstructure:"path"` // Database path; empty disables persistence
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json"` // JSON structured output instead of console
}
