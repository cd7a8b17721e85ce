package am

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// API transport defaults
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("api.requests_per_sec", 20) // Polite default for public image CDNs
	v.SetDefault("api.burst", 5)

	// Cache eviction defaults
	v.SetDefault("cache.max_cached_nodes", 30) // Full-res panoramas are large; keep the set small
	v.SetDefault("cache.interval_seconds", 10)
	v.SetDefault("cache.keep_active", 5)

	// Prefetch defaults
	v.SetDefault("prefetch.enabled", true)
	v.SetDefault("prefetch.workers", 2)

	// Ledger defaults
	v.SetDefault("ledger.path", "viewer.db")

	// Logging defaults
	v.SetDefault("log.json", false)
}
