package catalog

import (
	"context"
	"sort"
	"strings"

	"shopping-assistant/internal/pkg/common"
)

// Item 商品目錄中的庫存品項
type Item struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Category string   `json:"category" yaml:"category"`
	Tags     []string `json:"tags" yaml:"tags"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Quantity float64  `json:"quantity" yaml:"quantity"`
	Unit     string   `json:"unit" yaml:"unit"`
	Price    float64  `json:"price" yaml:"price"`
}

// Key 識別鍵：有 ID 用 ID，否則用小寫名稱
func (i Item) Key() string {
	if i.ID != "" {
		return i.ID
	}
	return common.NormalizeName(i.Name)
}

// InStock 庫存大於 0
func (i Item) InStock() bool {
	return i.Quantity > 0
}

// Lookup 唯讀的商品查詢介面，查詢比對皆不分大小寫
type Lookup interface {
	// FindByID 依 ID 查詢，找不到的 ID 直接略過
	FindByID(ctx context.Context, ids []string) ([]Item, error)
	// FindByName 名稱完全相同
	FindByName(ctx context.Context, name string, inStockOnly bool) ([]Item, error)
	// FindByNameContains 名稱包含 term
	FindByNameContains(ctx context.Context, term string, inStockOnly bool) ([]Item, error)
	// FindByTagOrKeyword 任一標籤或關鍵字包含 term
	FindByTagOrKeyword(ctx context.Context, term string, inStockOnly bool) ([]Item, error)
	// FindByCategory 分類相同
	FindByCategory(ctx context.Context, category string, inStockOnly bool) ([]Item, error)
}

func matchesName(item Item, name string) bool {
	return common.NormalizeName(item.Name) == common.NormalizeName(name)
}

func nameContains(item Item, term string) bool {
	t := common.NormalizeName(term)
	return t != "" && strings.Contains(common.NormalizeName(item.Name), t)
}

func tagOrKeywordContains(item Item, term string) bool {
	t := common.NormalizeName(term)
	if t == "" {
		return false
	}
	for _, values := range [][]string{item.Tags, item.Keywords} {
		for _, v := range values {
			if strings.Contains(common.NormalizeName(v), t) {
				return true
			}
		}
	}
	return false
}

func sameCategory(item Item, category string) bool {
	c := common.NormalizeName(category)
	return c != "" && common.NormalizeName(item.Category) == c
}

// sortItems 依名稱與 ID 排序，讓查詢結果穩定
func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
}

func cloneItem(item Item) Item {
	item.Tags = append([]string(nil), item.Tags...)
	item.Keywords = append([]string(nil), item.Keywords...)
	return item
}
