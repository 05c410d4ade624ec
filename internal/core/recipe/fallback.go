package recipe

import (
	"sort"
	"strings"

	"shopping-assistant/internal/pkg/common"
)

// FallbackRecipe 內建食譜，食材數量以 1 人份為基準
type FallbackRecipe struct {
	DishName     string
	Ingredients  []IngredientRequest
	Instructions []Instruction
	PrepTime     int
	CookTime     int
	Difficulty   string
	Cuisine      string
	Nutrition    Nutrition
	Tags         []string
	Equipment    []string
	Allergens    []string
}

// FallbackBook 生成失敗時使用的食譜表
type FallbackBook struct {
	recipes map[string]FallbackRecipe
	keys    []string
	generic FallbackRecipe
}

// NewFallbackBook 建立食譜表，鍵會統一為小寫
func NewFallbackBook(recipes map[string]FallbackRecipe, generic FallbackRecipe) FallbackBook {
	book := FallbackBook{
		recipes: make(map[string]FallbackRecipe, len(recipes)),
		generic: generic,
	}
	for key, r := range recipes {
		k := common.NormalizeName(key)
		book.recipes[k] = r
		book.keys = append(book.keys, k)
	}
	// 較長的鍵優先，例如 "baked spaghetti" 先於 "spaghetti"
	sort.Slice(book.keys, func(i, j int) bool {
		if len(book.keys[i]) != len(book.keys[j]) {
			return len(book.keys[i]) > len(book.keys[j])
		}
		return book.keys[i] < book.keys[j]
	})
	return book
}

// Match 回傳菜名包含的鍵，沒有符合時回傳空字串
func (b FallbackBook) Match(dishName string) string {
	normalized := common.NormalizeName(dishName)
	for _, key := range b.keys {
		if strings.Contains(normalized, key) {
			return key
		}
	}
	return ""
}

// Recipe 依菜名選出內建食譜並依份量縮放
func (b FallbackBook) Recipe(dishName string, servings int, dietType DietType) *Recipe {
	if servings < 1 {
		servings = 1
	}

	base := b.generic
	if key := b.Match(dishName); key != "" {
		base = b.recipes[key]
	}

	name := strings.TrimSpace(dishName)
	if name == "" {
		name = base.DishName
	}

	r := &Recipe{
		DishName:     name,
		Servings:     servings,
		DietType:     dietType,
		PrepTime:     base.PrepTime,
		CookTime:     base.CookTime,
		Difficulty:   base.Difficulty,
		Cuisine:      base.Cuisine,
		Nutrition:    base.Nutrition,
		Tags:         append([]string(nil), base.Tags...),
		Equipment:    append([]string(nil), base.Equipment...),
		Allergens:    append([]string(nil), base.Allergens...),
		Instructions: append([]Instruction(nil), base.Instructions...),
		Source:       SourceFallback,
	}

	r.Ingredients = make([]IngredientRequest, len(base.Ingredients))
	for i, ing := range base.Ingredients {
		ing.Quantity = common.Round2(ing.Quantity * float64(servings))
		r.Ingredients[i] = ing
	}

	return r
}

func essential(name string, qty float64, unit, category string) IngredientRequest {
	return IngredientRequest{Name: name, Quantity: qty, Unit: unit, Category: category, IsEssential: true}
}

func optional(name string, qty float64, unit, category string) IngredientRequest {
	return IngredientRequest{Name: name, Quantity: qty, Unit: unit, Category: category}
}

func steps(texts ...string) []Instruction {
	out := make([]Instruction, len(texts))
	for i, text := range texts {
		out[i] = Instruction{StepNumber: i + 1, Instruction: text, EstimatedTime: defaultEstimatedTime}
	}
	return out
}

// DefaultFallbackBook 內建的義大利麵食譜與通用食譜
func DefaultFallbackBook() FallbackBook {
	return NewFallbackBook(map[string]FallbackRecipe{
		"chicken pasta": {
			DishName: "Chicken Pasta",
			Ingredients: []IngredientRequest{
				essential("Penne Pasta", 0.1, "kg", "Pasta"),
				essential("Chicken Breast", 0.15, "kg", "Meat"),
				essential("Garlic", 2, "pieces", "Vegetables"),
				essential("Olive Oil", 15, "ml", "Oil"),
				optional("Parmesan Cheese", 20, "g", "Dairy"),
				optional("Black Pepper", 1, "g", "Spices"),
			},
			Instructions: steps(
				"Boil the pasta in salted water until al dente, then drain.",
				"Season the chicken and sear it in olive oil until cooked through.",
				"Add minced garlic and cook for one minute.",
				"Toss the pasta with the chicken and finish with parmesan and pepper.",
			),
			PrepTime: 10, CookTime: 20, Difficulty: "Easy", Cuisine: "Italian",
			Nutrition: Nutrition{Calories: 620, Protein: 42, Carbs: 70, Fat: 18},
			Tags:      []string{"pasta", "chicken", "dinner"},
			Equipment: []string{"pot", "frying pan"},
			Allergens: []string{"gluten", "dairy"},
		},
		"red pasta": {
			DishName: "Red Sauce Pasta",
			Ingredients: []IngredientRequest{
				essential("Penne Pasta", 0.1, "kg", "Pasta"),
				essential("Tomato Sauce", 120, "ml", "Sauce"),
				essential("Garlic", 2, "pieces", "Vegetables"),
				essential("Onion", 0.5, "pieces", "Vegetables"),
				essential("Olive Oil", 15, "ml", "Oil"),
				optional("Basil", 2, "g", "Herbs"),
			},
			Instructions: steps(
				"Cook the pasta until al dente and reserve some pasta water.",
				"Saute onion and garlic in olive oil until soft.",
				"Add tomato sauce and simmer for ten minutes.",
				"Toss the pasta in the sauce and garnish with basil.",
			),
			PrepTime: 10, CookTime: 20, Difficulty: "Easy", Cuisine: "Italian",
			Nutrition: Nutrition{Calories: 480, Protein: 14, Carbs: 82, Fat: 11},
			Tags:      []string{"pasta", "vegetarian", "tomato"},
			Equipment: []string{"pot", "saucepan"},
			Allergens: []string{"gluten"},
		},
		"white pasta": {
			DishName: "White Sauce Pasta",
			Ingredients: []IngredientRequest{
				essential("Penne Pasta", 0.1, "kg", "Pasta"),
				essential("Butter", 15, "g", "Dairy"),
				essential("Milk", 150, "ml", "Dairy"),
				essential("All Purpose Flour", 10, "g", "Baking"),
				essential("Garlic", 1, "pieces", "Vegetables"),
				optional("Parmesan Cheese", 20, "g", "Dairy"),
			},
			Instructions: steps(
				"Cook the pasta until al dente and drain.",
				"Melt butter, stir in flour and cook for one minute.",
				"Whisk in milk gradually and simmer until thick.",
				"Add garlic and parmesan, then fold in the pasta.",
			),
			PrepTime: 10, CookTime: 20, Difficulty: "Easy", Cuisine: "Italian",
			Nutrition: Nutrition{Calories: 560, Protein: 18, Carbs: 76, Fat: 20},
			Tags:      []string{"pasta", "vegetarian", "creamy"},
			Equipment: []string{"pot", "saucepan", "whisk"},
			Allergens: []string{"gluten", "dairy"},
		},
		"baked spaghetti": {
			DishName: "Baked Spaghetti",
			Ingredients: []IngredientRequest{
				essential("Spaghetti", 0.1, "kg", "Pasta"),
				essential("Ground Beef", 0.1, "kg", "Meat"),
				essential("Tomato Sauce", 120, "ml", "Sauce"),
				essential("Mozzarella Cheese", 40, "g", "Dairy"),
				essential("Onion", 0.5, "pieces", "Vegetables"),
				optional("Oregano", 1, "g", "Spices"),
			},
			Instructions: steps(
				"Preheat the oven to 180C and cook the spaghetti until just underdone.",
				"Brown the beef with onion and stir in the tomato sauce.",
				"Mix the spaghetti with the sauce and spread it in a baking dish.",
				"Top with mozzarella and oregano, then bake for 25 minutes.",
			),
			PrepTime: 15, CookTime: 40, Difficulty: "Medium", Cuisine: "Italian-American",
			Nutrition: Nutrition{Calories: 710, Protein: 38, Carbs: 74, Fat: 28},
			Tags:      []string{"pasta", "baked", "beef"},
			Equipment: []string{"pot", "frying pan", "baking dish", "oven"},
			Allergens: []string{"gluten", "dairy"},
		},
	}, FallbackRecipe{
		DishName: "Simple Home Dish",
		Ingredients: []IngredientRequest{
			essential("Onion", 1, "pieces", "Vegetables"),
			essential("Garlic", 2, "pieces", "Vegetables"),
			essential("Olive Oil", 15, "ml", "Oil"),
			essential("Salt", 2, "g", "Spices"),
			optional("Black Pepper", 1, "g", "Spices"),
		},
		Instructions: steps(
			"Prepare and chop all ingredients.",
			"Heat olive oil and saute onion and garlic until fragrant.",
			"Add the main ingredients and cook until done.",
			"Season with salt and pepper to taste and serve.",
		),
		PrepTime: 10, CookTime: 20, Difficulty: "Easy", Cuisine: "Home",
		Nutrition: Nutrition{Calories: 350, Protein: 10, Carbs: 30, Fat: 15},
		Tags:      []string{"simple"},
		Equipment: []string{"frying pan"},
	})
}
