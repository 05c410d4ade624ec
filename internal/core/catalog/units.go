package catalog

import "strings"

// unitAliases 常見單位寫法
var unitAliases = map[string]string{
	"g":           "g",
	"gram":        "g",
	"grams":       "g",
	"kg":          "kg",
	"kilogram":    "kg",
	"kilograms":   "kg",
	"ml":          "ml",
	"milliliter":  "ml",
	"milliliters": "ml",
	"l":           "l",
	"liter":       "l",
	"liters":      "l",
	"litre":       "l",
	"litres":      "l",
}

// conversions 只處理同一量綱內的換算
var conversions = map[[2]string]float64{
	{"g", "kg"}: 0.001,
	{"kg", "g"}: 1000,
	{"ml", "l"}: 0.001,
	{"l", "ml"}: 1000,
}

// canonicalUnit 將單位轉成標準寫法，未知單位回傳小寫原字串
func canonicalUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if alias, ok := unitAliases[u]; ok {
		return alias
	}
	return u
}

// ConvertQuantity 將食譜數量換算成庫存單位。
// 僅支援 g/kg 與 ml/l；相同或無法換算的單位保留原數量。
func ConvertQuantity(quantity float64, from, to string) float64 {
	f, t := canonicalUnit(from), canonicalUnit(to)
	if f == t {
		return quantity
	}
	if factor, ok := conversions[[2]string{f, t}]; ok {
		return quantity * factor
	}
	return quantity
}
