package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/cache"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/config"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/repository"
)

// backends bundles the storage and cache connections opened from config.
type backends struct {
	players repository.PlayerRepository
	logs    repository.MutationLogRepository
	cache   cache.Cache
	redis   *redis.Client
}

func openStore(ctx context.Context, cfg config.StoreConfig) (repository.PlayerRepository, repository.MutationLogRepository, error) {
	switch cfg.Type {
	case config.StoreMongoDB:
		conn, err := repository.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		players, err := repository.NewMongoDBPlayerRepository(ctx, conn, cfg.PlayersCollection)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		logs, err := repository.NewMongoDBLogRepository(ctx, conn, cfg.MutationLogCollection)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return players, logs, nil
	case config.StorePostgres:
		repo, err := repository.NewPostgresPlayerRepository(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	case config.StoreMySQL:
		repo, err := repository.NewMySQLPlayerRepository(cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	case config.StoreSQLite:
		repo, err := repository.NewSQLitePlayerRepository(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	}
	return nil, nil, fmt.Errorf("unsupported store type %q", cfg.Type)
}

func openBackends(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backends, error) {
	players, logs, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Type, err)
	}
	log.Info("Player store ready", "store_type", cfg.Store.Type)

	b := &backends{players: players, logs: logs}

	switch cfg.Cache.Type {
	case config.CacheRedis:
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.redis = client
		b.cache = cache.NewRedisCache(client, "")
	default:
		b.cache = cache.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL)
	}
	log.Info("Cache ready", "cache_type", cfg.Cache.Type, "ttl", cfg.Cache.TTL.String())

	return b, nil
}

// pingRedis is a readiness probe for the shared Redis client.
func (b *backends) pingRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return b.redis.Ping(ctx).Err()
}

// pingStore is a readiness probe for the player store.
func (b *backends) pingStore(ctx context.Context) error {
	_, err := b.players.GetStats(ctx)
	return err
}

// Close releases every connection. Repository Close is idempotent, so a
// store serving both repositories is closed once.
func (b *backends) Close() error {
	var errs []error
	if b.cache != nil {
		errs = append(errs, b.cache.Close())
	}
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	if b.logs != nil {
		errs = append(errs, b.logs.Close())
	}
	if b.players != nil {
		errs = append(errs, b.players.Close())
	}
	return errors.Join(errs...)
}
