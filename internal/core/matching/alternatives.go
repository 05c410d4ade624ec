package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"shopping-assistant/internal/core/catalog"
)

// DefaultAlternativesLimit 替代商品數量上限
const DefaultAlternativesLimit = 5

// AlternativesFinder 找出缺貨食材的替代商品
type AlternativesFinder struct {
	catalog catalog.Lookup
	limit   int
}

// NewAlternativesFinder 創建替代商品查詢器
func NewAlternativesFinder(lookup catalog.Lookup, limit int) *AlternativesFinder {
	if limit <= 0 {
		limit = DefaultAlternativesLimit
	}
	return &AlternativesFinder{catalog: lookup, limit: limit}
}

// FindAlternatives 同分類、標籤/關鍵字包含名稱、或名稱首字相同的有庫存商品，依相似度排序
func (f *AlternativesFinder) FindAlternatives(ctx context.Context, name, category string) ([]Alternative, error) {
	seen := make(map[string]struct{})
	var candidates []catalog.Item
	collect := func(items []catalog.Item) {
		for _, item := range items {
			if item.Quantity <= 0 {
				continue
			}
			if _, ok := seen[item.Key()]; ok {
				continue
			}
			seen[item.Key()] = struct{}{}
			candidates = append(candidates, item)
		}
	}

	if strings.TrimSpace(category) != "" {
		items, err := f.catalog.FindByCategory(ctx, category, true)
		if err != nil {
			return nil, fmt.Errorf("find by category: %w", err)
		}
		collect(items)
	}

	items, err := f.catalog.FindByTagOrKeyword(ctx, name, true)
	if err != nil {
		return nil, fmt.Errorf("find by tag: %w", err)
	}
	collect(items)

	if token := firstToken(name); token != "" {
		items, err := f.catalog.FindByNameContains(ctx, token, true)
		if err != nil {
			return nil, fmt.Errorf("find by first token: %w", err)
		}
		var sameToken []catalog.Item
		for _, item := range items {
			if firstToken(item.Name) == token {
				sameToken = append(sameToken, item)
			}
		}
		collect(sameToken)
	}

	alternatives := make([]Alternative, len(candidates))
	for i, item := range candidates {
		alternatives[i] = Alternative{
			Item:       item,
			Similarity: Similarity(name, item.Name),
			Reason:     fmt.Sprintf("Alternative for %s", name),
		}
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].Similarity > alternatives[j].Similarity
	})
	if len(alternatives) > f.limit {
		alternatives = alternatives[:f.limit]
	}
	return alternatives, nil
}
