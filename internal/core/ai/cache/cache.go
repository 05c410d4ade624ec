package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"shopping-assistant/internal/infrastructure/config"
	"shopping-assistant/internal/pkg/common"
)

// Cache 生成結果快取，未命中時回傳 common.ErrCacheMiss
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Key 依 (菜名, 份量, 飲食類型) 產生快取鍵
func Key(dishName string, servings int, dietType string) string {
	raw := fmt.Sprintf("%s|%d|%s", common.NormalizeName(dishName), servings, strings.ToLower(dietType))
	hash := sha256.Sum256([]byte(raw))
	return "recipe:" + hex.EncodeToString(hash[:])
}

// New 依設定建立快取，停用時回傳 nil
func New(cfg *config.Config) (Cache, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case "redis":
		service, err := NewService(cfg.Cache, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return service, nil
	default:
		return NewManager(cfg.Cache), nil
	}
}
