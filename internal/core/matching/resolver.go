package matching

import (
	"context"
	"fmt"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/core/recipe"
	"shopping-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// Resolver 將食譜食材比對到商品目錄
type Resolver struct {
	catalog      catalog.Lookup
	synonyms     Synonyms
	alternatives *AlternativesFinder
}

// NewResolver 創建比對器
func NewResolver(lookup catalog.Lookup, synonyms Synonyms, alternatives *AlternativesFinder) *Resolver {
	if alternatives == nil {
		alternatives = NewAlternativesFinder(lookup, DefaultAlternativesLimit)
	}
	return &Resolver{catalog: lookup, synonyms: synonyms, alternatives: alternatives}
}

// Resolve 逐一比對食材，結果順序與輸入相同；單一食材失敗只會標記為 error
func (r *Resolver) Resolve(ctx context.Context, ingredients []recipe.IngredientRequest) []ResolvedIngredient {
	results := make([]ResolvedIngredient, len(ingredients))
	for i, ing := range ingredients {
		results[i] = r.resolveOne(ctx, ing)
	}
	return results
}

func (r *Resolver) resolveOne(ctx context.Context, req recipe.IngredientRequest) (result ResolvedIngredient) {
	defer func() {
		if p := recover(); p != nil {
			common.LogError("食材比對發生 panic", zap.String("ingredient", req.Name), zap.Any("panic", p))
			result = Failed(req, fmt.Errorf("%w: %v", common.ErrResolution, p))
		}
	}()

	item, stage, term, err := r.findMatch(ctx, req.Name)
	if err != nil {
		common.LogWarn("食材比對失敗", zap.String("ingredient", req.Name), zap.Error(err))
		return Failed(req, fmt.Errorf("%w: %w", common.ErrResolution, err))
	}

	if item != nil {
		required := catalog.ConvertQuantity(req.Quantity, req.Unit, item.Unit)
		return Matched(req, Match{
			Item:             *item,
			Stage:            stage,
			Term:             term,
			RequiredQuantity: required,
			HasEnoughStock:   item.Quantity >= required,
			TotalPrice:       common.Round2(item.Price * required),
		})
	}

	alternatives, err := r.alternatives.FindAlternatives(ctx, req.Name, req.Category)
	if err != nil {
		common.LogWarn("替代商品查詢失敗", zap.String("ingredient", req.Name), zap.Error(err))
		alternatives = nil
	}
	return Unavailable(req, alternatives)
}

// findMatch 依序嘗試：完全相同 → 名稱包含 → 標籤/關鍵字 → 同義詞展開
func (r *Resolver) findMatch(ctx context.Context, name string) (*catalog.Item, Stage, string, error) {
	if common.NormalizeName(name) == "" {
		return nil, "", "", nil
	}

	items, err := r.catalog.FindByName(ctx, name, true)
	if err != nil {
		return nil, "", "", err
	}
	if best := pickBest(name, items); best != nil {
		return best, StageExact, name, nil
	}

	best, stage, err := r.searchTerm(ctx, name, name)
	if err != nil || best != nil {
		return best, stage, name, err
	}

	for _, term := range r.synonyms.Expand(name) {
		best, _, err := r.searchTerm(ctx, name, term)
		if err != nil {
			return nil, "", "", err
		}
		if best != nil {
			return best, StageSynonym, term, nil
		}
	}
	return nil, "", "", nil
}

// searchTerm 以名稱包含、再以標籤/關鍵字查詢單一詞
func (r *Resolver) searchTerm(ctx context.Context, name, term string) (*catalog.Item, Stage, error) {
	items, err := r.catalog.FindByNameContains(ctx, term, true)
	if err != nil {
		return nil, "", err
	}
	if best := pickBest(name, items); best != nil {
		return best, StageSubstring, nil
	}

	items, err = r.catalog.FindByTagOrKeyword(ctx, term, true)
	if err != nil {
		return nil, "", err
	}
	if best := pickBest(name, items); best != nil {
		return best, StageTag, nil
	}
	return nil, "", nil
}

// pickBest 取與食材名稱最相似的有庫存商品
func pickBest(name string, items []catalog.Item) *catalog.Item {
	var best *catalog.Item
	bestScore := -1.0
	for i := range items {
		if !items[i].InStock() {
			continue
		}
		if score := Similarity(name, items[i].Name); score > bestScore {
			best, bestScore = &items[i], score
		}
	}
	return best
}
