package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/lifecoach-booking/internal/bookings"
	appconfig "github.com/wolfman30/lifecoach-booking/internal/config"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

// Supported BOOKING_STORE values.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRepository opens the booking store selected by BOOKING_STORE. The
// returned cleanup releases its connections and is never nil.
func BuildRepository(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (bookings.Repository, func(), error) {
	if cfg == nil {
		return nil, func() {}, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch store := cfg.BookingStore; store {
	case "", StoreMemory:
		logger.Info("booking store ready", "store", StoreMemory)
		return bookings.NewInMemoryRepository(), func() {}, nil

	case StoreRedis:
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, func() {}, fmt.Errorf("bootstrap: redis store selected but %q is unreachable", cfg.RedisAddr)
		}
		logger.Info("booking store ready", "store", StoreRedis, "addr", cfg.RedisAddr)
		return bookings.NewRedisRepository(client), func() { _ = client.Close() }, nil

	case StorePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, func() {}, fmt.Errorf("bootstrap: postgres store selected but DATABASE_URL is empty")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("bootstrap: open postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, func() {}, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		logger.Info("booking store ready", "store", StorePostgres)
		return bookings.NewPostgresRepository(pool), pool.Close, nil

	default:
		return nil, func() {}, fmt.Errorf("bootstrap: unknown booking store %q", store)
	}
}
