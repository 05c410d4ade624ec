package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopping-assistant/internal/api"
	"shopping-assistant/internal/api/handlers/health"
	"shopping-assistant/internal/core/ai/cache"
	"shopping-assistant/internal/core/ai/openrouter"
	"shopping-assistant/internal/core/ai/retry"
	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/core/matching"
	"shopping-assistant/internal/core/pipeline"
	"shopping-assistant/internal/core/recipe"
	"shopping-assistant/internal/core/recommend"
	"shopping-assistant/internal/infrastructure/config"
	"shopping-assistant/internal/infrastructure/database"
	"shopping-assistant/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// os.Exit 不會執行 defer，資源都在 run 內關閉
	if err := run(cfg); err != nil {
		common.LogError("Server stopped with error", zap.Error(err))
		common.Sync()
		os.Exit(1)
	}
	common.Sync()
}

// run 建立服務並阻塞到收到中斷信號或伺服器失敗
func run(cfg *config.Config) error {
	common.LogInfo("載入設定",
		zap.String("openrouter_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	deps, cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	router, err := api.SetupRouter(cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("ai_enabled", cfg.OpenRouter.APIKey != ""),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
	return nil
}

// setup 開啟資料庫與快取並組裝服務；失敗時已開啟的資源會先關閉
func setup(cfg *config.Config) (api.Dependencies, func(), error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return api.Dependencies{}, nil, fmt.Errorf("failed to open database: %w", err)
	}
	closers := []func(){func() { _ = database.Close(db) }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.AutoMigrate {
		models := append(catalog.Models(), recipe.Models()...)
		if err := database.Migrate(db, models...); err != nil {
			cleanup()
			return api.Dependencies{}, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// 生成結果快取
	generationCache, err := cache.New(cfg)
	if err != nil {
		cleanup()
		return api.Dependencies{}, nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	if generationCache != nil {
		closers = append(closers, func() { _ = generationCache.Close() })
	}

	deps, err := buildDependencies(cfg, db, generationCache)
	if err != nil {
		cleanup()
		return api.Dependencies{}, nil, fmt.Errorf("failed to build services: %w", err)
	}
	return deps, cleanup, nil
}

// buildDependencies 組裝 食譜 → 比對 → 推薦 的服務
func buildDependencies(cfg *config.Config, db *gorm.DB, generationCache cache.Cache) (api.Dependencies, error) {
	tablesFile, err := config.LoadTables(cfg.Matching.TablesFile)
	if err != nil {
		return api.Dependencies{}, err
	}
	synonyms := matching.DefaultSynonyms()
	tables := recommend.DefaultTables()
	if tablesFile != nil {
		if len(tablesFile.Synonyms) > 0 {
			synonyms = matching.NewSynonyms(tablesFile.Synonyms)
		}
		if len(tablesFile.TypeKeywords) > 0 {
			tables = recommend.NewTables(tablesFile.Types, tablesFile.TypeKeywords, tablesFile.Complements, tablesFile.Stopwords)
		}
		common.LogInfo("載入對照表", zap.String("path", cfg.Matching.TablesFile))
	}

	var opts []recipe.GeneratorOption
	if generationCache != nil {
		opts = append(opts, recipe.WithCache(generationCache))
	}
	opts = append(opts, recipe.WithTimeout(cfg.OpenRouter.Timeout))

	// 沒有 API Key 時生成器直接使用內建食譜
	var completer recipe.Completer
	if client := openrouter.NewClient(cfg.OpenRouter); client.Configured() {
		completer = client
	} else {
		common.LogWarn("未設定 OPENROUTER_API_KEY，使用內建食譜")
	}

	generator := recipe.NewGenerator(completer, retry.NewExecutor(retry.FromConfig(cfg.Retry)), recipe.DefaultFallbackBook(), opts...)
	recipes := recipe.NewService(generator, recipe.NewStore(db))

	lookup := catalog.NewStore(db)
	alternatives := matching.NewAlternativesFinder(lookup, cfg.Matching.AlternativesLimit)
	resolver := matching.NewResolver(lookup, synonyms, alternatives)
	engine := recommend.NewEngine(lookup, tables, cfg.Recommend.MinRelevance, cfg.Recommend.Limit)

	orchestrator := pipeline.NewOrchestrator(recipes, resolver, engine,
		pipeline.WithWorkers(cfg.Batch.Workers),
		pipeline.WithRecommendationLimit(cfg.Recommend.Limit),
	)

	probes := []health.Probe{{
		Name:  "database",
		Check: func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}}
	if pinger, ok := generationCache.(interface{ Ping(context.Context) error }); ok {
		probes = append(probes, health.Probe{Name: "redis", Check: pinger.Ping})
	}

	return api.Dependencies{
		Checker:      orchestrator,
		Recommender:  engine,
		Alternatives: alternatives,
		Catalog:      lookup,
		Probes:       probes,
	}, nil
}
