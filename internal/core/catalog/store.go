package catalog

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopping-assistant/internal/pkg/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StringList 以 JSON 文字儲存的字串陣列
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	// 不轉義 & < >，讓 LIKE 預篩與記憶體比對一致
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(l)); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported StringList value %T", value)
	}
	return json.Unmarshal(data, l)
}

// Product 商品主檔
type Product struct {
	ID          string     `gorm:"type:varchar(36);primaryKey"`
	Name        string     `gorm:"size:255;not null"`
	NameKey     string     `gorm:"size:255;not null;uniqueIndex"`
	Category    string     `gorm:"size:100"`
	CategoryKey string     `gorm:"size:100;index"`
	Tags        StringList `gorm:"type:text"`
	Keywords    StringList `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockItem 商品庫存，與 Product 一對一
type StockItem struct {
	ID        string  `gorm:"type:varchar(36);primaryKey"`
	ProductID string  `gorm:"type:varchar(36);not null;uniqueIndex"`
	Quantity  float64 `gorm:"not null;default:0"`
	Unit      string  `gorm:"size:20"`
	Price     float64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// Models 需要遷移的資料表
func Models() []interface{} {
	return []interface{}{&Product{}, &StockItem{}}
}

// Store 以 gorm 實作的商品目錄，先查商品再查庫存
type Store struct {
	db *gorm.DB
}

// NewStore 創建商品目錄
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(common.NormalizeName(term)) + "%"
}

// FindByID 依商品 ID 查詢
func (s *Store) FindByID(ctx context.Context, ids []string) ([]Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.query(ctx, false, nil, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN ?", ids)
	})
}

// FindByName 名稱完全相同
func (s *Store) FindByName(ctx context.Context, name string, inStockOnly bool) ([]Item, error) {
	key := common.NormalizeName(name)
	if key == "" {
		return nil, nil
	}
	return s.query(ctx, inStockOnly, nil, func(db *gorm.DB) *gorm.DB {
		return db.Where("name_key = ?", key)
	})
}

// FindByNameContains 名稱包含 term
func (s *Store) FindByNameContains(ctx context.Context, term string, inStockOnly bool) ([]Item, error) {
	if common.NormalizeName(term) == "" {
		return nil, nil
	}
	return s.query(ctx, inStockOnly, nil, func(db *gorm.DB) *gorm.DB {
		return db.Where(`name_key LIKE ? ESCAPE '\'`, likePattern(term))
	})
}

// FindByTagOrKeyword 標籤或關鍵字包含 term；SQL 粗篩後在記憶體精確比對
func (s *Store) FindByTagOrKeyword(ctx context.Context, term string, inStockOnly bool) ([]Item, error) {
	if common.NormalizeName(term) == "" {
		return nil, nil
	}
	pattern := likePattern(term)
	return s.query(ctx, inStockOnly,
		func(item Item) bool { return tagOrKeywordContains(item, term) },
		func(db *gorm.DB) *gorm.DB {
			return db.Where(`LOWER(tags) LIKE ? ESCAPE '\' OR LOWER(keywords) LIKE ? ESCAPE '\'`, pattern, pattern)
		})
}

// FindByCategory 分類相同
func (s *Store) FindByCategory(ctx context.Context, category string, inStockOnly bool) ([]Item, error) {
	key := common.NormalizeName(category)
	if key == "" {
		return nil, nil
	}
	return s.query(ctx, inStockOnly, nil, func(db *gorm.DB) *gorm.DB {
		return db.Where("category_key = ?", key)
	})
}

// query 兩步查詢：商品 → 庫存，再組成 Item
func (s *Store) query(ctx context.Context, inStockOnly bool, keep func(Item) bool, scope func(*gorm.DB) *gorm.DB) ([]Item, error) {
	var products []Product
	if err := scope(s.db.WithContext(ctx).Model(&Product{})).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	if len(products) == 0 {
		return nil, nil
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	var stock []StockItem
	if err := s.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&stock).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	byProduct := make(map[string]StockItem, len(stock))
	for _, st := range stock {
		byProduct[st.ProductID] = st
	}

	items := make([]Item, 0, len(products))
	for _, p := range products {
		st := byProduct[p.ID]
		item := Item{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Tags:     append([]string(nil), p.Tags...),
			Keywords: append([]string(nil), p.Keywords...),
			Quantity: st.Quantity,
			Unit:     st.Unit,
			Price:    st.Price,
		}
		if inStockOnly && !item.InStock() {
			continue
		}
		if keep != nil && !keep(item) {
			continue
		}
		items = append(items, item)
	}
	sortItems(items)
	return items, nil
}

// Upsert 依名稱新增或更新商品與庫存，僅供初始化資料使用
func (s *Store) Upsert(ctx context.Context, items []Item) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			key := common.NormalizeName(item.Name)
			if key == "" {
				return common.NewValidationError("catalog item name is required")
			}

			var product Product
			err := tx.Where("name_key = ?", key).First(&product).Error
			exists := err == nil
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if !exists {
				product.ID = item.ID
				if product.ID == "" {
					product.ID = common.GenerateUUID()
				}
			}

			product.Name = strings.TrimSpace(item.Name)
			product.NameKey = key
			product.Category = strings.TrimSpace(item.Category)
			product.CategoryKey = common.NormalizeName(item.Category)
			product.Tags = StringList(item.Tags)
			product.Keywords = StringList(item.Keywords)
			if exists {
				err = tx.Save(&product).Error
			} else {
				err = tx.Create(&product).Error
			}
			if err != nil {
				return err
			}

			stock := StockItem{
				ID:        common.GenerateUUID(),
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Unit:      item.Unit,
				Price:     item.Price,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"quantity", "unit", "price", "updated_at"}),
			}).Create(&stock).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
