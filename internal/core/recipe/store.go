package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopping-assistant/internal/pkg/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound 找不到已儲存的食譜
var ErrNotFound = errors.New("recipe not found")

// RecipeRecord 已儲存的食譜，以小寫菜名唯一
type RecipeRecord struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	NameKey   string    `gorm:"size:255;not null;uniqueIndex" json:"-"`
	Servings  int       `gorm:"not null" json:"servings"`
	DietType  string    `gorm:"size:20" json:"diet_type"`
	Payload   string    `gorm:"type:text;not null" json:"-"`
	Views     int64     `gorm:"not null;default:1" json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 資料表名稱
func (RecipeRecord) TableName() string {
	return "recipes"
}

// Store 以 gorm 儲存食譜
type Store struct {
	db *gorm.DB
}

// NewStore 創建食譜儲存
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Models 需要遷移的資料表
func Models() []interface{} {
	return []interface{}{&RecipeRecord{}}
}

func nameKey(name string) string {
	return common.NormalizeName(name)
}

// FindByName 以不分大小寫的菜名查詢
func (s *Store) FindByName(ctx context.Context, name string) (*Recipe, error) {
	var record RecipeRecord
	err := s.db.WithContext(ctx).Where("name_key = ?", nameKey(name)).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return record.toRecipe()
}

// IncrementViews 瀏覽次數加一
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Model(&RecipeRecord{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindOrCreate 依菜名新增；已存在時只增加瀏覽次數並回傳既有食譜
func (s *Store) FindOrCreate(ctx context.Context, r *Recipe) (*Recipe, error) {
	if strings.TrimSpace(r.DishName) == "" {
		return nil, fmt.Errorf("%w: empty dish name", common.ErrPersistence)
	}

	payload, err := common.ToJSON(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	record := RecipeRecord{
		ID:       common.GenerateUUID(),
		Name:     strings.TrimSpace(r.DishName),
		NameKey:  nameKey(r.DishName),
		Servings: r.Servings,
		DietType: string(r.DietType),
		Payload:  payload,
		Views:    1,
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name_key"}},
		DoNothing: true,
	}).Create(&record)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, result.Error)
	}

	if result.RowsAffected == 0 {
		existing, err := s.FindByName(ctx, r.DishName)
		if err != nil {
			return nil, err
		}
		if err := s.IncrementViews(ctx, existing.ID); err != nil {
			return nil, err
		}
		existing.Views++
		return existing, nil
	}

	return record.toRecipe()
}

func (rec *RecipeRecord) toRecipe() (*Recipe, error) {
	var r Recipe
	if err := common.ParseJSON(rec.Payload, &r); err != nil {
		return nil, fmt.Errorf("%w: corrupt payload for %s: %v", common.ErrPersistence, rec.ID, err)
	}
	r.ID = rec.ID
	r.Views = rec.Views
	return &r, nil
}
