// Package catalogtest 提供測試用的商品目錄
package catalogtest

import "shopping-assistant/internal/core/catalog"

// SampleItems 義大利麵相關的測試商品
func SampleItems() []catalog.Item {
	return []catalog.Item{
		{ID: "p-penne", Name: "Penne Pasta", Category: "Pasta", Tags: []string{"pasta", "italian"}, Keywords: []string{"penne"}, Quantity: 20, Unit: "kg", Price: 4},
		{ID: "p-spaghetti", Name: "Spaghetti", Category: "Pasta", Tags: []string{"pasta", "italian"}, Keywords: []string{"noodles"}, Quantity: 15, Unit: "kg", Price: 3.5},
		{ID: "p-fusilli", Name: "Fusilli", Category: "Pasta", Tags: []string{"pasta"}, Keywords: []string{"spiral"}, Quantity: 0, Unit: "kg", Price: 4.2},
		{ID: "c-parmesan", Name: "Parmesan Cheese", Category: "Dairy", Tags: []string{"cheese", "italian"}, Keywords: []string{"parmigiano"}, Quantity: 5, Unit: "kg", Price: 22},
		{ID: "c-mozzarella", Name: "Mozzarella Cheese", Category: "Dairy", Tags: []string{"cheese"}, Keywords: []string{"mozzarella"}, Quantity: 4, Unit: "kg", Price: 12},
		{ID: "s-tomato", Name: "Tomato Sauce", Category: "Sauce", Tags: []string{"sauce", "tomato"}, Keywords: []string{"marinara"}, Quantity: 30, Unit: "l", Price: 3},
		{ID: "s-pesto", Name: "Pesto Sauce", Category: "Sauce", Tags: []string{"sauce", "basil"}, Keywords: []string{"pesto"}, Quantity: 6, Unit: "l", Price: 9},
		{ID: "m-chicken", Name: "Chicken Breast", Category: "Meat", Tags: []string{"meat", "poultry"}, Keywords: []string{"chicken"}, Quantity: 0.1, Unit: "kg", Price: 10},
		{ID: "v-garlic", Name: "Garlic", Category: "Vegetables", Tags: []string{"vegetables", "aromatic"}, Keywords: []string{"garlic"}, Quantity: 200, Unit: "pieces", Price: 0.2},
		{ID: "v-onion", Name: "Onion", Category: "Vegetables", Tags: []string{"vegetables"}, Keywords: []string{"onion"}, Quantity: 100, Unit: "pieces", Price: 0.3},
		{ID: "o-olive", Name: "Olive Oil", Category: "Oil", Tags: []string{"oil", "olive oil"}, Keywords: []string{"extra virgin"}, Quantity: 10, Unit: "l", Price: 8},
		{ID: "b-baguette", Name: "Baguette", Category: "Bakery", Tags: []string{"bread"}, Keywords: []string{"french bread"}, Quantity: 12, Unit: "pieces", Price: 2.5},
		{ID: "h-basil", Name: "Fresh Basil", Category: "Herbs", Tags: []string{"herbs"}, Keywords: []string{"basil"}, Quantity: 3, Unit: "pieces", Price: 1.5},
		{ID: "x-pepper", Name: "Black Pepper", Category: "Spices", Tags: []string{"spices"}, Keywords: []string{"pepper"}, Quantity: 2, Unit: "kg", Price: 15},
		{ID: "x-chili", Name: "Chili Spice Mix", Category: "Spices", Tags: []string{"spices", "hot"}, Keywords: []string{"chili"}, Quantity: 1, Unit: "kg", Price: 11},
	}
}

// Memory 以測試商品建立的記憶體目錄
func Memory() *catalog.Memory {
	return catalog.NewMemory(SampleItems())
}
