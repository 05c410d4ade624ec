package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/core/recipe"
	"shopping-assistant/internal/infrastructure/config"
	"shopping-assistant/internal/infrastructure/database"
	"shopping-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// 將 YAML 商品目錄匯入資料庫
func main() {
	file := flag.String("file", "catalog.yaml", "catalog seed file (YAML)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	items, err := catalog.LoadSeedFile(*file)
	if err != nil {
		if common.IsValidationError(err) {
			common.LogFatal("商品資料格式錯誤", zap.String("file", *file), zap.Error(err))
		}
		common.LogFatal("Failed to load seed file", zap.String("file", *file), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	err = seed(ctx, cfg.Database, items)
	cancel()
	if err != nil {
		common.LogError("Failed to seed catalog", zap.Error(err))
		common.Sync()
		os.Exit(1)
	}

	common.LogInfo("商品目錄匯入完成",
		zap.String("file", *file),
		zap.Int("items", len(items)),
		zap.String("driver", cfg.Database.Driver),
	)
}

// seed 建立資料表並寫入商品，結束前關閉連線
func seed(ctx context.Context, cfg config.DatabaseConfig, items []catalog.Item) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	models := append(catalog.Models(), recipe.Models()...)
	if err := database.Migrate(db, models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return catalog.NewStore(db).Upsert(ctx, items)
}
