package matching

import (
	"sort"
	"strings"

	"shopping-assistant/internal/pkg/common"
)

// Synonyms 分類名稱到同義詞的對照表，建立後不可修改
type Synonyms struct {
	groups map[string][]string
	order  []string
}

// NewSynonyms 複製對照表並統一為小寫
func NewSynonyms(groups map[string][]string) Synonyms {
	s := Synonyms{groups: make(map[string][]string, len(groups))}
	for category, words := range groups {
		key := common.NormalizeName(category)
		if key == "" {
			continue
		}
		list := make([]string, 0, len(words))
		for _, w := range words {
			if w = common.NormalizeName(w); w != "" {
				list = append(list, w)
			}
		}
		s.groups[key] = list
		s.order = append(s.order, key)
	}
	sort.Strings(s.order)
	return s
}

// DefaultSynonyms 內建同義詞表
func DefaultSynonyms() Synonyms {
	return NewSynonyms(map[string][]string{
		"pasta":   {"spaghetti", "penne", "fusilli", "noodles", "macaroni", "linguine"},
		"cheese":  {"parmesan", "mozzarella", "cheddar", "ricotta", "pecorino"},
		"tomato":  {"tomatoes", "marinara", "passata", "tomato sauce"},
		"chicken": {"chicken breast", "chicken thigh", "poultry"},
		"beef":    {"ground beef", "minced beef", "steak"},
		"cream":   {"heavy cream", "whipping cream", "milk"},
		"herbs":   {"basil", "oregano", "parsley", "thyme"},
		"bread":   {"baguette", "loaf", "ciabatta"},
		"olive":   {"olive oil", "extra virgin"},
	})
}

// Categories 排序後的分類名稱
func (s Synonyms) Categories() []string {
	return append([]string(nil), s.order...)
}

// Words 分類的同義詞
func (s Synonyms) Words(category string) []string {
	return append([]string(nil), s.groups[common.NormalizeName(category)]...)
}

// Expand 回傳與名稱以完整詞相符的分類及其同義詞，不含名稱本身
func (s Synonyms) Expand(name string) []string {
	n := common.NormalizeName(name)
	if n == "" {
		return nil
	}
	nameTokens := strings.Fields(n)

	seen := map[string]struct{}{n: {}}
	var terms []string
	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, category := range s.order {
		words := s.groups[category]
		if !tokenMatch(nameTokens, category) && !anyTokenMatch(nameTokens, words) {
			continue
		}
		add(category)
		for _, w := range words {
			add(w)
		}
	}
	return terms
}

// tokenMatch 名稱與詞組其中一方的詞完整出現在另一方中，例如 "tea" 不會對上 "steak"
func tokenMatch(nameTokens []string, phrase string) bool {
	phraseTokens := strings.Fields(phrase)
	return containsRun(nameTokens, phraseTokens) || containsRun(phraseTokens, nameTokens)
}

func anyTokenMatch(nameTokens []string, words []string) bool {
	for _, w := range words {
		if tokenMatch(nameTokens, w) {
			return true
		}
	}
	return false
}

// containsRun sub 是否為 tokens 中連續的一段
func containsRun(tokens, sub []string) bool {
	if len(sub) == 0 || len(sub) > len(tokens) {
		return false
	}
	for i := 0; i+len(sub) <= len(tokens); i++ {
		match := true
		for j, w := range sub {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
