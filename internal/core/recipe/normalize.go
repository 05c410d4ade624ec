package recipe

import (
	"fmt"
	"strings"

	"shopping-assistant/internal/pkg/common"
)

const (
	defaultQuantity      = 1
	defaultUnit          = "pieces"
	defaultCategory      = "Common"
	defaultEstimatedTime = 5
)

// parsePayload 從模型輸出取出 JSON 物件並驗證
func parsePayload(content string) (*generatedPayload, error) {
	raw := common.ExtractJSONObject(content)
	var payload generatedPayload
	if err := common.ParseJSON(raw, &payload); err != nil {
		// 部分模型會輸出未加引號的鍵
		payload = generatedPayload{}
		if retryErr := common.ParseJSON(common.QuoteJSONKeys(raw), &payload); retryErr != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
		}
	}
	if err := validatePayload(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// validatePayload 食材與步驟都必須非空
func validatePayload(p *generatedPayload) error {
	ingredients := 0
	for _, ing := range p.Ingredients {
		if strings.TrimSpace(ing.Name) != "" {
			ingredients++
		}
	}
	instructions := 0
	for _, step := range p.Instructions {
		if strings.TrimSpace(step.Instruction) != "" {
			instructions++
		}
	}
	if ingredients == 0 {
		return fmt.Errorf("%w: no ingredients", common.ErrInvalidPayload)
	}
	if instructions == 0 {
		return fmt.Errorf("%w: no instructions", common.ErrInvalidPayload)
	}
	return nil
}

// normalize 將 AI 回應補齊預設值並轉為 Recipe
func normalize(p *generatedPayload, dishName string, servings int, dietType DietType) *Recipe {
	r := &Recipe{
		DishName:   strings.TrimSpace(dishName),
		Servings:   servings,
		DietType:   dietType,
		PrepTime:   nonNegativeInt(p.PrepTime),
		CookTime:   nonNegativeInt(p.CookTime),
		Difficulty: strings.TrimSpace(p.Difficulty),
		Cuisine:    strings.TrimSpace(p.Cuisine),
		Nutrition: Nutrition{
			Calories: nonNegative(p.NutritionInfo.Calories),
			Protein:  nonNegative(p.NutritionInfo.Protein),
			Carbs:    nonNegative(p.NutritionInfo.Carbs),
			Fat:      nonNegative(p.NutritionInfo.Fat),
		},
		Tags:      cleanList(p.Tags),
		Equipment: cleanList(p.Equipment),
		Allergens: cleanList(p.Allergens),
		Source:    SourceAI,
	}

	for _, ing := range p.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		item := IngredientRequest{
			Name:             name,
			Quantity:         defaultQuantity,
			Unit:             strings.TrimSpace(ing.Unit),
			Category:         strings.TrimSpace(ing.Category),
			IsEssential:      true,
			PreparationNotes: strings.TrimSpace(ing.PreparationNotes),
		}
		if ing.Quantity.set && ing.Quantity.value >= 0 {
			item.Quantity = ing.Quantity.value
		}
		if item.Unit == "" {
			item.Unit = defaultUnit
		}
		if item.Category == "" {
			item.Category = defaultCategory
		}
		if ing.IsEssential.set {
			item.IsEssential = ing.IsEssential.value
		}
		r.Ingredients = append(r.Ingredients, item)
	}

	// 步驟編號重新從 1 開始
	for _, step := range p.Instructions {
		text := strings.TrimSpace(step.Instruction)
		if text == "" {
			continue
		}
		estimated := defaultEstimatedTime
		if step.EstimatedTime.set && step.EstimatedTime.value > 0 {
			estimated = int(step.EstimatedTime.value + 0.5)
		}
		r.Instructions = append(r.Instructions, Instruction{
			StepNumber:    len(r.Instructions) + 1,
			Instruction:   text,
			EstimatedTime: estimated,
			Tips:          strings.TrimSpace(step.Tips),
		})
	}

	return r
}

func nonNegative(n flexNumber) float64 {
	if !n.set || n.value < 0 {
		return 0
	}
	return n.value
}

func nonNegativeInt(n flexNumber) int {
	return int(nonNegative(n) + 0.5)
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
