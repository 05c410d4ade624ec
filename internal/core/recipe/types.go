package recipe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DietType 飲食類型
type DietType string

const (
	DietVeg    DietType = "Veg"
	DietNonVeg DietType = "Non-Veg"
	DietVegan  DietType = "Vegan"
	DietMixed  DietType = "Mixed"
)

// ParseDietType 解析飲食類型，空字串視為 Mixed
func ParseDietType(s string) (DietType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DietMixed, nil
	case "veg", "vegetarian":
		return DietVeg, nil
	case "non-veg", "nonveg", "non-vegetarian":
		return DietNonVeg, nil
	case "vegan":
		return DietVegan, nil
	case "mixed":
		return DietMixed, nil
	default:
		return "", fmt.Errorf("unknown diet type %q", s)
	}
}

// Source 食譜來源
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
	SourceStored   Source = "stored"
)

// IngredientRequest 食譜所需的食材
type IngredientRequest struct {
	Name             string  `json:"name"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	Category         string  `json:"category"`
	IsEssential      bool    `json:"is_essential"`
	PreparationNotes string  `json:"preparation_notes,omitempty"`
}

// Instruction 食譜步驟
type Instruction struct {
	StepNumber    int    `json:"step_number"`
	Instruction   string `json:"instruction"`
	EstimatedTime int    `json:"estimated_time"`
	Tips          string `json:"tips,omitempty"`
}

// Nutrition 每份營養估算
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Recipe 結構化食譜，回傳後不再修改
type Recipe struct {
	ID           string              `json:"id,omitempty"`
	DishName     string              `json:"dish_name"`
	Servings     int                 `json:"servings"`
	DietType     DietType            `json:"diet_type"`
	Ingredients  []IngredientRequest `json:"ingredients"`
	Instructions []Instruction       `json:"instructions"`
	PrepTime     int                 `json:"prep_time"`
	CookTime     int                 `json:"cook_time"`
	Difficulty   string              `json:"difficulty,omitempty"`
	Cuisine      string              `json:"cuisine,omitempty"`
	Nutrition    Nutrition           `json:"nutrition"`
	Tags         []string            `json:"tags"`
	Equipment    []string            `json:"equipment"`
	Allergens    []string            `json:"allergens"`
	Source       Source              `json:"source"`
	Views        int64               `json:"views,omitempty"`
}

// flexNumber 接受數字或數字字串（例如 "200g"）
type flexNumber struct {
	value float64
	set   bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.value, n.set = f, true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
		n.value, n.set = f, true
	}
	return nil
}

// flexBool 缺漏時保持未設定
type flexBool struct {
	value bool
	set   bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		b.value, b.set = v, true
	}
	return nil
}

// payloadIngredient AI 回應中的食材
type payloadIngredient struct {
	Name             string     `json:"name"`
	Quantity         flexNumber `json:"quantity"`
	Unit             string     `json:"unit"`
	Category         string     `json:"category"`
	IsEssential      flexBool   `json:"isEssential"`
	PreparationNotes string     `json:"preparationNotes"`
}

// payloadInstruction AI 回應中的步驟
type payloadInstruction struct {
	StepNumber    flexNumber `json:"stepNumber"`
	Instruction   string     `json:"instruction"`
	EstimatedTime flexNumber `json:"estimatedTime"`
	Tips          string     `json:"tips"`
}

// payloadNutrition AI 回應中的營養資訊
type payloadNutrition struct {
	Calories flexNumber `json:"calories"`
	Protein  flexNumber `json:"protein"`
	Carbs    flexNumber `json:"carbs"`
	Fat      flexNumber `json:"fat"`
}

// generatedPayload AI 回應的 JSON 物件
type generatedPayload struct {
	Ingredients   []payloadIngredient  `json:"ingredients"`
	Instructions  []payloadInstruction `json:"instructions"`
	PrepTime      flexNumber           `json:"prepTime"`
	CookTime      flexNumber           `json:"cookTime"`
	Difficulty    string               `json:"difficulty"`
	Cuisine       string               `json:"cuisine"`
	NutritionInfo payloadNutrition     `json:"nutritionInfo"`
	Tags          []string             `json:"tags"`
	Equipment     []string             `json:"equipment"`
	Allergens     []string             `json:"allergens"`
}
