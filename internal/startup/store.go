package startup

import (
	"context"
	"fmt"
	"time"

	"video-tagger/internal/boltstore"
	"video-tagger/internal/catalog"
	"video-tagger/internal/database"
	"video-tagger/internal/filesystem"
)

// OpenStore opens the catalog store selected by cfg.StoreBackend.
func OpenStore(ctx context.Context, cfg *Config) (catalog.Store, error) {
	start := time.Now()

	var (
		store catalog.Store
		err   error
	)
	switch cfg.StoreBackend {
	case BackendBolt:
		store, err = boltstore.Open(cfg.DatabasePath)
	case BackendSQLite:
		store, err = database.New(ctx, cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store at %s: %w", cfg.StoreBackend, cfg.DatabasePath, err)
	}

	LogStoreInit(cfg.StoreBackend, time.Since(start))
	return store, nil
}

// RetryConfig builds the filesystem retry settings from cfg.
func (c *Config) RetryConfig() filesystem.RetryConfig {
	rc := filesystem.DefaultRetryConfig()
	rc.MaxRetries = c.FSMaxRetries
	rc.VolumeResolver = filesystem.NewVolumeResolver(c.VolumeMap())
	return rc
}
