package catalog

import "context"

// Memory 記憶體中的商品目錄，建立後唯讀
type Memory struct {
	items []Item
}

// NewMemory 以品項清單建立目錄
func NewMemory(items []Item) *Memory {
	m := &Memory{items: make([]Item, len(items))}
	for i, item := range items {
		m.items[i] = cloneItem(item)
	}
	sortItems(m.items)
	return m
}

func (m *Memory) filter(ctx context.Context, inStockOnly bool, match func(Item) bool) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Item
	for _, item := range m.items {
		if inStockOnly && !item.InStock() {
			continue
		}
		if match(item) {
			out = append(out, cloneItem(item))
		}
	}
	return out, nil
}

// FindByID 依 ID 查詢
func (m *Memory) FindByID(ctx context.Context, ids []string) ([]Item, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	return m.filter(ctx, false, func(item Item) bool {
		_, ok := wanted[item.ID]
		return ok
	})
}

// FindByName 名稱完全相同
func (m *Memory) FindByName(ctx context.Context, name string, inStockOnly bool) ([]Item, error) {
	return m.filter(ctx, inStockOnly, func(item Item) bool { return matchesName(item, name) })
}

// FindByNameContains 名稱包含 term
func (m *Memory) FindByNameContains(ctx context.Context, term string, inStockOnly bool) ([]Item, error) {
	return m.filter(ctx, inStockOnly, func(item Item) bool { return nameContains(item, term) })
}

// FindByTagOrKeyword 標籤或關鍵字包含 term
func (m *Memory) FindByTagOrKeyword(ctx context.Context, term string, inStockOnly bool) ([]Item, error) {
	return m.filter(ctx, inStockOnly, func(item Item) bool { return tagOrKeywordContains(item, term) })
}

// FindByCategory 分類相同
func (m *Memory) FindByCategory(ctx context.Context, category string, inStockOnly bool) ([]Item, error) {
	return m.filter(ctx, inStockOnly, func(item Item) bool { return sameCategory(item, category) })
}
