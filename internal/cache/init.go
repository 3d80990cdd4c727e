package cache

import (
	"github.com/flexprice/proratemate/internal/config"
	"github.com/flexprice/proratemate/internal/logger"
)

// Initialize builds the process wide result cache
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache system",
		"enabled", cfg.Cache.Enabled,
		"ttl", cfg.Cache.TTL.String(),
	)

	return NewInMemoryCache(cfg, log)
}
