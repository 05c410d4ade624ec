package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopping-assistant/internal/core/ai/cache"
	"shopping-assistant/internal/core/ai/retry"
	"shopping-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// Completer 文字生成服務
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Generator 食譜生成器，永遠回傳一份食譜
type Generator struct {
	completer Completer
	executor  *retry.Executor
	cache     cache.Cache
	fallback  FallbackBook
	timeout   time.Duration
}

// GeneratorOption 生成器選項
type GeneratorOption func(*Generator)

// WithCache 使用生成結果快取
func WithCache(c cache.Cache) GeneratorOption {
	return func(g *Generator) { g.cache = c }
}

// WithTimeout 設定單次呼叫逾時
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.timeout = d }
}

// NewGenerator 創建食譜生成器，completer 為 nil 時一律使用內建食譜
func NewGenerator(completer Completer, executor *retry.Executor, fallback FallbackBook, opts ...GeneratorOption) *Generator {
	if executor == nil {
		executor = retry.NewExecutor(retry.DefaultPolicy())
	}
	g := &Generator{
		completer: completer,
		executor:  executor,
		fallback:  fallback,
		timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate 生成食譜；重試用盡、未授權或沒有 API Key 時回傳內建食譜
func (g *Generator) Generate(ctx context.Context, dishName string, servings int, dietType DietType) *Recipe {
	if servings < 1 {
		servings = 1
	}
	if dietType == "" {
		dietType = DietMixed
	}

	if g.completer == nil {
		common.LogInfo("未設定生成服務，使用內建食譜",
			zap.String("dish_name", dishName),
			zap.String("fallback_key", g.fallback.Match(dishName)),
		)
		return g.fallback.Recipe(dishName, servings, dietType)
	}

	key := cache.Key(dishName, servings, string(dietType))
	if payload := g.cached(ctx, key); payload != nil {
		return normalize(payload, dishName, servings, dietType)
	}

	user := buildUserPrompt(dishName, servings, dietType)
	var raw string
	payload, err := retry.Do(ctx, g.executor, func(ctx context.Context, attempt int) (*generatedPayload, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		start := time.Now()
		content, err := g.completer.Complete(callCtx, systemPrompt, user)
		if err != nil {
			common.LogGenerationCall(dishName, attempt, time.Since(start), err)
			return nil, fmt.Errorf("%w: %w", common.ErrGeneration, err)
		}

		payload, err := parsePayload(content)
		common.LogGenerationCall(dishName, attempt, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		raw = common.ExtractJSONObject(content)
		return payload, nil
	})
	if err != nil {
		common.LogWarn("食譜生成失敗，使用內建食譜",
			zap.String("dish_name", dishName),
			zap.String("fallback_key", g.fallback.Match(dishName)),
			zap.Error(err),
		)
		return g.fallback.Recipe(dishName, servings, dietType)
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, raw); err != nil {
			common.LogWarn("快取寫入失敗", zap.Error(err))
		}
	}

	return normalize(payload, dishName, servings, dietType)
}

// cached 讀取快取中已驗證過的回應
func (g *Generator) cached(ctx context.Context, key string) *generatedPayload {
	if g.cache == nil {
		return nil
	}
	raw, err := g.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("快取讀取失敗", zap.Error(err))
		}
		return nil
	}
	payload, err := parsePayload(raw)
	if err != nil {
		common.LogWarn("快取內容無效", zap.String("key", strings.TrimPrefix(key, "recipe:")), zap.Error(err))
		return nil
	}
	return payload
}
