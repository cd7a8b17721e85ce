package am

import "github.com/Caboosey/mapillary-js/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.API.TimeoutSeconds <= 0 {
		return errors.Newf("api.timeout_seconds must be > 0, got %d", c.API.TimeoutSeconds)
	}

	// Rate limit: 0 = unlimited (valid), negative = invalid
	if c.API.RequestsPerSec < 0 {
		return errors.Newf("api.requests_per_sec must be >= 0, got %d", c.API.RequestsPerSec)
	}
	if c.API.RequestsPerSec > 0 && c.API.Burst <= 0 {
		return errors.Newf("api.burst must be > 0 when rate limiting, got %d", c.API.Burst)
	}

	// Cache ceiling: 0 = no eviction, negative = invalid
	if c.Cache.MaxCachedNodes < 0 {
		return errors.Newf("cache.max_cached_nodes must be >= 0, got %d", c.Cache.MaxCachedNodes)
	}
	if c.Cache.IntervalSeconds < 0 {
		return errors.Newf("cache.interval_seconds must be >= 0, got %d", c.Cache.IntervalSeconds)
	}
	if c.Cache.KeepActive < 0 {
		return errors.Newf("cache.keep_active must be >= 0, got %d", c.Cache.KeepActive)
	}

	if c.Prefetch.Workers < 0 {
		return errors.Newf("prefetch.workers must be >= 0, got %d", c.Prefetch.Workers)
	}

	return nil
}
