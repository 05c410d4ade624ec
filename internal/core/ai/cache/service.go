package cache

import (
	"context"
	"errors"
	"fmt"

	"shopping-assistant/internal/infrastructure/config"
	"shopping-assistant/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Service Redis 快取服務
type Service struct {
	client *redis.Client
	config config.CacheConfig
}

// NewService 創建 Redis 快取服務
func NewService(cfg config.CacheConfig, redisCfg config.RedisConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewServiceWithClient(cfg, client), nil
}

// NewServiceWithClient 以既有的 client 建立服務
func NewServiceWithClient(cfg config.CacheConfig, client *redis.Client) *Service {
	return &Service{client: client, config: cfg}
}

// Get 獲取快取
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			common.LogCacheMiss("redis")
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	common.LogCacheHit("redis")
	return data, nil
}

// Set 設置快取
func (s *Service) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *Service) Close() error {
	return s.client.Close()
}

// Ping 檢查 Redis 連線
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
