package catalog

import (
	"context"
	"fmt"
	"strings"

	"kursus/services/progress-service/config"
	"kursus/services/progress-service/internal/infrastructure/repository"
	"kursus/services/progress-service/internal/platform/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Open builds the catalog named by CATALOG_SOURCE. A file catalog is watched
// for changes until ctx ends. When rdb is non-nil the result is cached in redis.
func Open(ctx context.Context, cfg config.Config, db *gorm.DB, rdb *redis.Client, log *logger.Logger) (Reader, error) {
	var r Reader
	switch strings.ToLower(cfg.CatalogSource) {
	case "", "file":
		fc, err := NewFileCatalog(cfg.CatalogFile, log)
		if err != nil {
			return nil, err
		}
		if err := fc.Watch(ctx); err != nil {
			log.Warn("catalog watch unavailable, changes need a restart", "path", cfg.CatalogFile, "error", err)
		}
		r = fc
	case "database", "db":
		r = NewDatabaseCatalog(repository.NewCourseRepository(db))
	default:
		return nil, fmt.Errorf("unsupported CATALOG_SOURCE %q", cfg.CatalogSource)
	}

	if rdb != nil {
		r = NewCachedCatalog(r, rdb, cfg.CatalogCacheTTL, log)
	}
	return r, nil
}
