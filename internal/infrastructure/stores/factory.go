package stores

import (
	"context"

	"huddle/internal/core/ports"
	"huddle/internal/infrastructure/stores/memory"
	redisstore "huddle/internal/infrastructure/stores/redis"
	"huddle/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StoreFactory creates the backing stores, preferring redis and falling
// back to in-memory implementations when redis is disabled or unreachable.
type StoreFactory struct {
	useRedis    bool
	redisClient *redis.Client
	baseURL     string
	feedBuffer  int
	logger      *zap.SugaredLogger
}

func NewStoreFactory(cfg *config.Config, logger *zap.SugaredLogger) (*StoreFactory, error) {
	factory := &StoreFactory{
		useRedis:   cfg.Redis.Enabled,
		baseURL:    cfg.Server.PublicBaseURL,
		feedBuffer: cfg.Directory.FeedBufferSize,
		logger:     logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisstore.NewClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to redis, falling back to memory stores",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using redis stores")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory stores")
	}

	return factory, nil
}

func (f *StoreFactory) CreateChannelLog() ports.ChannelLog {
	if f.useRedis && f.redisClient != nil {
		return redisstore.NewChannelLog(f.redisClient, f.logger)
	}
	return memory.NewChannelLog(f.feedBuffer)
}

func (f *StoreFactory) CreateBlobStore() ports.BlobStore {
	if f.useRedis && f.redisClient != nil {
		return newResilientBlobStore(redisstore.NewBlobStore(f.redisClient, f.baseURL), f.logger)
	}
	return memory.NewBlobStore(f.baseURL)
}

func (f *StoreFactory) CreateIdentityStore() ports.IdentityStore {
	if f.useRedis && f.redisClient != nil {
		return redisstore.NewIdentityStore(f.redisClient)
	}
	return memory.NewIdentityStore()
}

func (f *StoreFactory) CreateDirectoryRecordStore() ports.DirectoryRecordStore {
	if f.useRedis && f.redisClient != nil {
		return redisstore.NewDirectoryRecordStore(f.redisClient)
	}
	return memory.NewDirectoryRecordStore()
}

// Close closes the redis connection if one was established.
func (f *StoreFactory) Close() error {
	if f.redisClient != nil {
		return f.redisClient.Close()
	}
	return nil
}

// HealthCheck pings redis when it is the active backend.
func (f *StoreFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
