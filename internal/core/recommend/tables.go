package recommend

import (
	"strings"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/pkg/common"
)

// CoarseTypes 搭配推薦使用的粗分類
var CoarseTypes = []string{"pasta", "cheese", "sauce", "bread", "meat", "vegetables", "spices", "oil"}

// Tables 推薦引擎使用的靜態對照表，建立後不可修改
type Tables struct {
	types       []string
	keywords    map[string][]string
	complements map[string][]string
	stopwords   map[string]struct{}
}

// NewTables 複製並正規化對照表；types 為空時使用 CoarseTypes
func NewTables(types []string, keywords, complements map[string][]string, stopwords []string) Tables {
	if len(types) == 0 {
		types = CoarseTypes
	}
	t := Tables{
		keywords:    normalizeGroups(keywords),
		complements: normalizeGroups(complements),
		stopwords:   make(map[string]struct{}, len(stopwords)),
	}
	for _, typ := range types {
		if typ = common.NormalizeName(typ); typ != "" {
			t.types = append(t.types, typ)
		}
	}
	for _, w := range stopwords {
		if w = common.NormalizeName(w); w != "" {
			t.stopwords[w] = struct{}{}
		}
	}
	return t
}

func normalizeGroups(groups map[string][]string) map[string][]string {
	out := make(map[string][]string, len(groups))
	for key, values := range groups {
		k := common.NormalizeName(key)
		if k == "" {
			continue
		}
		list := make([]string, 0, len(values))
		for _, v := range values {
			if v = common.NormalizeName(v); v != "" {
				list = append(list, v)
			}
		}
		out[k] = list
	}
	return out
}

// DefaultTables 內建的分類關鍵字、搭配表與停用詞
func DefaultTables() Tables {
	return NewTables(CoarseTypes,
		map[string][]string{
			"pasta":      {"pasta", "spaghetti", "penne", "fusilli", "macaroni", "linguine", "noodles"},
			"cheese":     {"cheese", "parmesan", "mozzarella", "cheddar", "ricotta"},
			"sauce":      {"sauce", "marinara", "pesto", "passata"},
			"bread":      {"bread", "baguette", "loaf", "ciabatta"},
			"meat":       {"meat", "chicken", "beef", "pork", "poultry", "bacon"},
			"vegetables": {"vegetable", "onion", "carrot", "spinach", "zucchini", "mushroom"},
			"spices":     {"spice", "pepper", "chili", "paprika", "cumin"},
			"oil":        {"oil"},
			"herbs":      {"herbs", "basil", "oregano", "parsley", "thyme"},
			"garlic":     {"garlic"},
			"olive oil":  {"olive oil"},
		},
		map[string][]string{
			"pasta":      {"cheese", "sauce", "herbs", "garlic", "olive oil", "bread"},
			"cheese":     {"bread", "pasta", "herbs"},
			"sauce":      {"pasta", "cheese", "herbs"},
			"bread":      {"cheese", "olive oil"},
			"meat":       {"spices", "vegetables", "sauce"},
			"vegetables": {"oil", "spices"},
			"spices":     {"meat", "vegetables"},
			"oil":        {"bread", "vegetables"},
		},
		[]string{"a", "an", "and", "the", "of", "with", "fresh", "organic", "premium", "mix", "pack", "for"},
	)
}

// itemText 名稱、分類與標籤合併後的小寫文字
func itemText(item catalog.Item) []string {
	parts := []string{common.NormalizeName(item.Name), common.NormalizeName(item.Category)}
	for _, tag := range item.Tags {
		parts = append(parts, common.NormalizeName(tag))
	}
	return parts
}

// Classify 以關鍵字包含判斷粗分類
func (t Tables) Classify(item catalog.Item) []string {
	texts := itemText(item)
	var types []string
	for _, typ := range t.types {
		if containsAny(texts, t.keywordsFor(typ)) {
			types = append(types, typ)
		}
	}
	return types
}

// Complements 粗分類的搭配分類
func (t Tables) Complements(typ string) []string {
	return append([]string(nil), t.complements[common.NormalizeName(typ)]...)
}

// keywordsFor 分類的搜尋關鍵字，未定義時用分類名稱本身
func (t Tables) keywordsFor(typ string) []string {
	if words, ok := t.keywords[typ]; ok && len(words) > 0 {
		return words
	}
	return []string{typ}
}

// tokens 名稱中非停用詞的詞
func (t Tables) tokens(name string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(common.NormalizeName(name)) {
		if _, stop := t.stopwords[w]; !stop {
			set[w] = struct{}{}
		}
	}
	return set
}

func containsAny(texts, keywords []string) bool {
	for _, text := range texts {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	return false
}
