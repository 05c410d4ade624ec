package recipe

import "fmt"

// systemPrompt 要求模型只回傳單一 JSON 物件
const systemPrompt = `You are a professional chef and recipe writer for a grocery store.
Respond with exactly one JSON object and nothing else. No markdown, no commentary.
The object must contain:
  "ingredients": array of {"name", "quantity" (number), "unit", "category", "isEssential" (boolean), "preparationNotes"}
  "instructions": array of {"stepNumber" (integer), "instruction", "estimatedTime" (minutes, integer), "tips"}
  "prepTime": minutes (integer)
  "cookTime": minutes (integer)
  "difficulty": "Easy" | "Medium" | "Hard"
  "cuisine": string
  "nutritionInfo": {"calories", "protein", "carbs", "fat"} per serving, numbers only
  "tags": array of strings
  "equipment": array of strings
  "allergens": array of strings
Use metric units (g, kg, ml, l) or "pieces", "tbsp", "tsp" where natural.
Ingredient names must be plain grocery product names (e.g. "Penne Pasta", "Chicken Breast").`

// buildUserPrompt 組合菜名、份量與飲食類型
func buildUserPrompt(dishName string, servings int, dietType DietType) string {
	return fmt.Sprintf(`Create a recipe.
Dish: %s
Servings: %d
Diet type: %s
Quantities must be for exactly %d servings and must respect the %s diet type.`,
		dishName, servings, dietType, servings, dietType)
}
