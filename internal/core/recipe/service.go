package recipe

import (
	"context"
	"errors"
	"strings"

	"shopping-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeGenerator 產生食譜，不回傳錯誤
type RecipeGenerator interface {
	Generate(ctx context.Context, dishName string, servings int, dietType DietType) *Recipe
}

// Repository 食譜儲存介面
type Repository interface {
	FindByName(ctx context.Context, name string) (*Recipe, error)
	IncrementViews(ctx context.Context, id string) error
	FindOrCreate(ctx context.Context, r *Recipe) (*Recipe, error)
}

// Service 食譜服務：先查已儲存的食譜，再呼叫生成器
type Service struct {
	generator RecipeGenerator
	store     Repository
}

// NewService 創建食譜服務，store 可為 nil
func NewService(generator RecipeGenerator, store Repository) *Service {
	return &Service{generator: generator, store: store}
}

// GetRecipe 取得食譜；儲存失敗時回傳沒有 ID 的食譜
func (s *Service) GetRecipe(ctx context.Context, dishName string, servings int, dietType DietType) (*Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if servings < 1 {
		servings = 1
	}
	if dietType == "" {
		dietType = DietMixed
	}

	if stored := s.lookup(ctx, dishName, servings, dietType); stored != nil {
		return stored, nil
	}

	generated := s.generator.Generate(ctx, dishName, servings, dietType)
	if generated.Source != SourceAI || s.store == nil {
		return generated, nil
	}

	saved, err := s.store.FindOrCreate(ctx, generated)
	if err != nil {
		common.LogWarn("食譜儲存失敗，回傳未儲存的食譜",
			zap.String("dish_name", dishName),
			zap.Error(err),
		)
		return generated, nil
	}

	out := *generated
	out.ID = saved.ID
	out.Views = saved.Views
	return &out, nil
}

// lookup 查詢已儲存的食譜，命中時瀏覽次數加一並依份量縮放
func (s *Service) lookup(ctx context.Context, dishName string, servings int, dietType DietType) *Recipe {
	if s.store == nil || strings.TrimSpace(dishName) == "" {
		return nil
	}

	stored, err := s.store.FindByName(ctx, dishName)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			common.LogWarn("食譜查詢失敗", zap.String("dish_name", dishName), zap.Error(err))
		}
		return nil
	}

	// 飲食類型不同時重新生成
	if dietType != DietMixed && stored.DietType != dietType {
		common.LogDebug("已儲存食譜的飲食類型不符",
			zap.String("dish_name", dishName),
			zap.String("stored", string(stored.DietType)),
			zap.String("requested", string(dietType)),
		)
		return nil
	}

	if err := s.store.IncrementViews(ctx, stored.ID); err != nil {
		common.LogWarn("瀏覽次數更新失敗", zap.String("recipe_id", stored.ID), zap.Error(err))
	} else {
		stored.Views++
	}

	stored.Source = SourceStored
	return scaleServings(stored, servings)
}

// scaleServings 依份量等比例縮放食材數量
func scaleServings(r *Recipe, servings int) *Recipe {
	if r.Servings < 1 || r.Servings == servings {
		return r
	}
	factor := float64(servings) / float64(r.Servings)
	out := *r
	out.Servings = servings
	out.Ingredients = make([]IngredientRequest, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ing.Quantity = common.Round2(ing.Quantity * factor)
		out.Ingredients[i] = ing
	}
	return &out
}
