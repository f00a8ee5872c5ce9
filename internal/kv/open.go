package kv

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/menu-factory/internal/config"
	"github.com/iliyamo/menu-factory/internal/database"
)

// Open builds the backend named by cfg.StoreBackend.  rdb is the shared
// Redis client and may be nil.  When the backend cannot be reached Open logs
// a warning and returns a Memory store so the service still starts with the
// master instance only.  The returned func releases backend resources.
func Open(ctx context.Context, cfg config.Config, rdb *redis.Client) (Store, func()) {
	noop := func() {}
	switch cfg.StoreBackend {
	case config.BackendRedis:
		if rdb == nil {
			log.Printf("kv: redis unreachable, falling back to memory")
			return NewMemory(), noop
		}
		return NewRedis(rdb, cfg.KeyPrefix), noop

	case config.BackendMySQL:
		db, err := database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Printf("kv: mysql unreachable (%v), falling back to memory", err)
			return NewMemory(), noop
		}
		s := NewSQL(db)
		if err := s.EnsureSchema(ctx); err != nil {
			log.Printf("kv: mysql schema: %v, falling back to memory", err)
			_ = db.Close()
			return NewMemory(), noop
		}
		return s, func() { _ = db.Close() }

	case config.BackendPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			log.Printf("kv: postgres unreachable (%v), falling back to memory", err)
			return NewMemory(), noop
		}
		s := NewPostgres(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			log.Printf("kv: postgres schema: %v, falling back to memory", err)
			pool.Close()
			return NewMemory(), noop
		}
		return s, pool.Close

	case config.BackendDisabled:
		log.Printf("kv: persistence disabled, serving seed data only")
		return Disabled{}, noop
	}
	return NewMemory(), noop
}
