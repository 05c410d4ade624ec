package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/core/matching"
	"shopping-assistant/internal/core/recipe"
	"shopping-assistant/internal/core/recommend"
	"shopping-assistant/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DishRequest 單一菜色請求
type DishRequest struct {
	DishName string          `json:"dish_name"`
	Servings int             `json:"servings"`
	DietType recipe.DietType `json:"diet_type"`
}

// RecipeProvider 取得食譜
type RecipeProvider interface {
	GetRecipe(ctx context.Context, dishName string, servings int, dietType recipe.DietType) (*recipe.Recipe, error)
}

// Report 單一菜色的購物清單報告
type Report struct {
	Success             bool                          `json:"success"`
	Error               string                        `json:"error,omitempty"`
	DishName            string                        `json:"dish_name"`
	Recipe              *recipe.Recipe                `json:"recipe,omitempty"`
	Ingredients         []matching.ResolvedIngredient `json:"ingredients"`
	Available           []matching.ResolvedIngredient `json:"available"`
	Missing             []matching.ResolvedIngredient `json:"missing"`
	Recommendations     []recommend.Candidate         `json:"recommendations"`
	TotalCost           float64                       `json:"total_cost"`
	AvailabilityPercent int                           `json:"availability_percent"`
	CanMakeRecipe       bool                          `json:"can_make_recipe"`
	HasAllIngredients   bool                          `json:"has_all_ingredients"`
	GeneratedAt         time.Time                     `json:"generated_at"`
}

// Orchestrator 依序執行 食譜 → 比對 → 推薦
type Orchestrator struct {
	recipes  RecipeProvider
	resolver *matching.Resolver
	engine   *recommend.Engine
	limit    int
	workers  int
	now      func() time.Time
}

// Option 設定選項
type Option func(*Orchestrator)

// WithRecommendationLimit 推薦數量上限
func WithRecommendationLimit(limit int) Option {
	return func(o *Orchestrator) { o.limit = limit }
}

// WithWorkers 批次檢查的並行數
func WithWorkers(workers int) Option {
	return func(o *Orchestrator) {
		if workers > 0 {
			o.workers = workers
		}
	}
}

// NewOrchestrator 創建流程協調器
func NewOrchestrator(recipes RecipeProvider, resolver *matching.Resolver, engine *recommend.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		recipes:  recipes,
		resolver: resolver,
		engine:   engine,
		limit:    recommend.DefaultLimit,
		workers:  4,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Check 產生單一菜色的報告，任何失敗都以 Success=false 表示
func (o *Orchestrator) Check(ctx context.Context, req DishRequest) (report *Report) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			common.LogError("購物清單檢查發生 panic",
				zap.String("dish_name", req.DishName),
				zap.Any("panic", p),
			)
			report = o.degraded(req, nil, nil, fmt.Errorf("unexpected failure: %v", p))
		}
	}()

	r, err := o.recipes.GetRecipe(ctx, req.DishName, req.Servings, req.DietType)
	if err != nil {
		common.LogWarn("取得食譜失敗", zap.String("dish_name", req.DishName), zap.Error(err))
		return o.degraded(req, nil, nil, err)
	}

	resolved := o.resolver.Resolve(ctx, r.Ingredients)
	if allFailed(resolved) {
		common.LogWarn("所有食材比對失敗", zap.String("dish_name", req.DishName))
		return o.degraded(req, r, resolved, common.ErrCatalogUnavailable)
	}

	report = &Report{
		Success:     true,
		DishName:    r.DishName,
		Recipe:      r,
		Ingredients: resolved,
		Available:   []matching.ResolvedIngredient{},
		Missing:     []matching.ResolvedIngredient{},
		GeneratedAt: o.now(),
	}

	var sources []catalog.Item
	for _, res := range resolved {
		if res.Status == matching.StatusAvailable {
			report.Available = append(report.Available, res)
		} else {
			report.Missing = append(report.Missing, res)
		}
		if res.Match != nil {
			report.TotalCost += res.Match.TotalPrice
			sources = append(sources, res.Match.Item)
		}
	}
	report.TotalCost = common.Round2(report.TotalCost)

	if total := len(resolved); total > 0 {
		report.AvailabilityPercent = int(math.Round(float64(len(report.Available)) / float64(total) * 100))
	}
	report.CanMakeRecipe = len(report.Available) > 0
	report.HasAllIngredients = len(report.Missing) == 0

	report.Recommendations = []recommend.Candidate{}
	if len(sources) > 0 {
		report.Recommendations = o.engine.Recommend(ctx, sources, o.limit)
	}

	common.LogInfo("購物清單檢查完成",
		zap.String("dish_name", r.DishName),
		zap.String("recipe_source", string(r.Source)),
		zap.Int("ingredients", len(resolved)),
		zap.Int("available", len(report.Available)),
		zap.Float64("total_cost", report.TotalCost),
		zap.Duration("耗時", time.Since(start)),
	)
	return report
}

// CheckBatch 並行檢查多道菜，每道菜各自成敗，回傳順序與輸入相同
func (o *Orchestrator) CheckBatch(ctx context.Context, reqs []DishRequest) []*Report {
	reports := make([]*Report, len(reqs))

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			reports[i] = o.Check(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

// degraded 失敗時的報告，可取得狀態相關欄位皆為零值
func (o *Orchestrator) degraded(req DishRequest, r *recipe.Recipe, resolved []matching.ResolvedIngredient, err error) *Report {
	if resolved == nil {
		resolved = []matching.ResolvedIngredient{}
	}
	return &Report{
		Success:         false,
		Error:           err.Error(),
		DishName:        req.DishName,
		Recipe:          r,
		Ingredients:     resolved,
		Available:       []matching.ResolvedIngredient{},
		Missing:         []matching.ResolvedIngredient{},
		Recommendations: []recommend.Candidate{},
		GeneratedAt:     o.now(),
	}
}

func allFailed(resolved []matching.ResolvedIngredient) bool {
	if len(resolved) == 0 {
		return false
	}
	for _, r := range resolved {
		if r.Status != matching.StatusError {
			return false
		}
	}
	return true
}
