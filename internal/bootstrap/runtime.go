// Package bootstrap wires the shared runtime: database, Redis and optional demo data.
package bootstrap

import (
	"fmt"

	"whvmatch/internal/cache"
	"whvmatch/internal/config"
	"whvmatch/internal/database"
	"whvmatch/internal/middleware"
	"whvmatch/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds the demo accounts.
// The Redis client is nil when Redis is not configured or unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := seed.Demo(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo accounts: %w", err)
		}
		middleware.Logger.Info("demo accounts ensured", "password", seed.DefaultPassword)
	}

	return db, r, nil
}
