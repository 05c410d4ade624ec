package matching

import (
	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/core/recipe"
)

// Status 食材可取得狀態
type Status string

const (
	StatusAvailable    Status = "available"
	StatusInsufficient Status = "insufficient"
	StatusUnavailable  Status = "unavailable"
	StatusError        Status = "error"
)

// Stage 比對成功的階段
type Stage string

const (
	StageExact     Stage = "exact"
	StageSubstring Stage = "substring"
	StageTag       Stage = "tag_keyword"
	StageSynonym   Stage = "synonym"
)

// Match 比對到的商品，僅在 available / insufficient 時存在
type Match struct {
	Item             catalog.Item `json:"item"`
	Stage            Stage        `json:"stage"`
	Term             string       `json:"term"`
	RequiredQuantity float64      `json:"required_quantity"`
	HasEnoughStock   bool         `json:"has_enough_stock"`
	TotalPrice       float64      `json:"total_price"`
}

// Alternative 替代商品
type Alternative struct {
	Item       catalog.Item `json:"item"`
	Similarity float64      `json:"similarity"`
	Reason     string       `json:"reason"`
}

// ResolvedIngredient 單一食材的比對結果，依 Status 決定哪些欄位有值
type ResolvedIngredient struct {
	Request      recipe.IngredientRequest `json:"request"`
	Status       Status                   `json:"status"`
	Match        *Match                   `json:"match,omitempty"`
	Alternatives []Alternative            `json:"alternatives,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

// Matched 建立 available 或 insufficient 結果
func Matched(req recipe.IngredientRequest, match Match) ResolvedIngredient {
	status := StatusInsufficient
	if match.HasEnoughStock {
		status = StatusAvailable
	}
	return ResolvedIngredient{Request: req, Status: status, Match: &match}
}

// Unavailable 建立 unavailable 結果，alternatives 永遠非 nil
func Unavailable(req recipe.IngredientRequest, alternatives []Alternative) ResolvedIngredient {
	if alternatives == nil {
		alternatives = []Alternative{}
	}
	return ResolvedIngredient{Request: req, Status: StatusUnavailable, Alternatives: alternatives}
}

// Failed 建立 error 結果
func Failed(req recipe.IngredientRequest, err error) ResolvedIngredient {
	return ResolvedIngredient{Request: req, Status: StatusError, Error: err.Error()}
}

// IsMatched 是否有比對到商品
func (r ResolvedIngredient) IsMatched() bool {
	return r.Match != nil
}
