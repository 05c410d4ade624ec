package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultLimit 推薦數量預設上限
const DefaultLimit = 8

// Candidate 推薦候選商品
type Candidate struct {
	Item     catalog.Item `json:"item"`
	Score    float64      `json:"score"`
	Strategy string       `json:"strategy"`
	Reason   string       `json:"reason"`
}

// Strategy 單一推薦策略；exclude 為來源商品的識別鍵
type Strategy interface {
	Name() string
	Candidates(ctx context.Context, sources []catalog.Item, exclude map[string]struct{}) ([]Candidate, error)
}

// Engine 合併多個策略的推薦引擎
type Engine struct {
	strategies []Strategy
	limit      int
}

// NewEngine 以三個內建策略創建推薦引擎
func NewEngine(lookup catalog.Lookup, tables Tables, minRelevance float64, limit int) *Engine {
	return NewEngineWithStrategies(limit,
		NewSimilarityStrategy(lookup, tables, minRelevance),
		NewCategoryStrategy(lookup),
		NewComplementaryStrategy(lookup, tables),
	)
}

// NewEngineWithStrategies 以自訂策略創建推薦引擎
func NewEngineWithStrategies(limit int, strategies ...Strategy) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{strategies: strategies, limit: limit}
}

// Recommend 執行所有策略，同一商品保留最高分，依分數排序後截斷；limit <= 0 時使用預設值
func (e *Engine) Recommend(ctx context.Context, sources []catalog.Item, limit int) []Candidate {
	if limit <= 0 {
		limit = e.limit
	}

	exclude := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		exclude[src.Key()] = struct{}{}
		exclude[common.NormalizeName(src.Name)] = struct{}{}
	}

	best := make(map[string]Candidate)
	for _, strategy := range e.strategies {
		for _, c := range e.run(ctx, strategy, sources, exclude) {
			if isExcluded(c.Item, exclude) {
				continue
			}
			c.Score = common.Clamp01(c.Score)
			key := c.Item.Key()
			if prev, ok := best[key]; !ok || c.Score > prev.Score {
				best[key] = c
			}
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return strings.ToLower(out[i].Item.Name) < strings.ToLower(out[j].Item.Name)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// run 執行單一策略，錯誤或 panic 只會讓該策略沒有結果
func (e *Engine) run(ctx context.Context, strategy Strategy, sources []catalog.Item, exclude map[string]struct{}) (candidates []Candidate) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			common.LogError("推薦策略發生 panic",
				zap.String("strategy", strategy.Name()),
				zap.Any("panic", p),
			)
			candidates = nil
		}
	}()

	candidates, err := strategy.Candidates(ctx, sources, exclude)
	if err != nil {
		common.LogWarn("推薦策略失敗",
			zap.String("strategy", strategy.Name()),
			zap.Error(fmt.Errorf("%w: %w", common.ErrStrategy, err)),
		)
		return nil
	}

	common.LogDebug("推薦策略完成",
		zap.String("strategy", strategy.Name()),
		zap.Int("candidates", len(candidates)),
		zap.Duration("耗時", time.Since(start)),
	)
	return candidates
}

func isExcluded(item catalog.Item, exclude map[string]struct{}) bool {
	if _, ok := exclude[item.Key()]; ok {
		return true
	}
	_, ok := exclude[common.NormalizeName(item.Name)]
	return ok
}
