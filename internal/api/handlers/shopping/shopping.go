package shopping

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/core/matching"
	"shopping-assistant/internal/core/pipeline"
	"shopping-assistant/internal/core/recipe"
	"shopping-assistant/internal/core/recommend"
	"shopping-assistant/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Checker 購物清單檢查
type Checker interface {
	Check(ctx context.Context, req pipeline.DishRequest) *pipeline.Report
	CheckBatch(ctx context.Context, reqs []pipeline.DishRequest) []*pipeline.Report
}

// Recommender 依購物車商品推薦
type Recommender interface {
	Recommend(ctx context.Context, sources []catalog.Item, limit int) []recommend.Candidate
}

// AlternativesFinder 查詢替代商品
type AlternativesFinder interface {
	FindAlternatives(ctx context.Context, name, category string) ([]matching.Alternative, error)
}

// CheckRequest 單道菜檢查請求
type CheckRequest struct {
	DishName string `json:"dish_name" binding:"required"`
	Servings int    `json:"servings" binding:"omitempty,min=1,max=100"`
	DietType string `json:"diet_type,omitempty"` // veg | non-veg | vegan | mixed
}

// BatchRequest 批次檢查請求
type BatchRequest struct {
	Dishes []CheckRequest `json:"dishes" binding:"required,min=1,dive"`
}

// BatchResponse 批次檢查結果，順序與請求相同
type BatchResponse struct {
	Results   []*pipeline.Report `json:"results"`
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
}

// RecommendationRequest 購物車推薦請求，可用商品 ID 或名稱
type RecommendationRequest struct {
	ItemIDs []string `json:"item_ids,omitempty"`
	Names   []string `json:"names,omitempty"`
	Limit   int      `json:"limit,omitempty" binding:"omitempty,min=1,max=50"`
}

// RecommendationResponse 推薦結果
type RecommendationResponse struct {
	Sources         []catalog.Item        `json:"sources"`
	Recommendations []recommend.Candidate `json:"recommendations"`
}

// AlternativesResponse 替代商品結果
type AlternativesResponse struct {
	Name         string                 `json:"name"`
	Category     string                 `json:"category,omitempty"`
	Alternatives []matching.Alternative `json:"alternatives"`
}

// Handler 購物助理處理程序
type Handler struct {
	checker      Checker
	recommender  Recommender
	alternatives AlternativesFinder
	lookup       catalog.Lookup
	maxDishes    int
	limit        int
	debug        bool
}

// NewHandler 創建購物助理處理程序
func NewHandler(checker Checker, recommender Recommender, alternatives AlternativesFinder, lookup catalog.Lookup, maxDishes, limit int, debug bool) *Handler {
	return &Handler{
		checker:      checker,
		recommender:  recommender,
		alternatives: alternatives,
		lookup:       lookup,
		maxDishes:    maxDishes,
		limit:        limit,
		debug:        debug,
	}
}

// HandleCheck 單道菜的購物清單
func (h *Handler) HandleCheck(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrInvalidRequest.WithErr(err))
		return
	}

	dish, err := toDishRequest(req)
	if err != nil {
		h.fail(c, common.ErrInvalidRequest.WithErr(err))
		return
	}

	common.LogInfo("開始處理購物清單檢查",
		zap.String("request_id", requestid.Get(c)),
		zap.String("dish_name", dish.DishName),
		zap.Int("servings", dish.Servings),
	)

	c.JSON(http.StatusOK, h.checker.Check(c.Request.Context(), dish))
}

// HandleBatch 多道菜的購物清單
func (h *Handler) HandleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrInvalidRequest.WithErr(err))
		return
	}
	if h.maxDishes > 0 && len(req.Dishes) > h.maxDishes {
		h.fail(c, common.ErrBatchTooLarge.WithErr(fmt.Errorf("%d dishes exceeds limit %d", len(req.Dishes), h.maxDishes)))
		return
	}

	dishes := make([]pipeline.DishRequest, len(req.Dishes))
	for i, d := range req.Dishes {
		dish, err := toDishRequest(d)
		if err != nil {
			h.fail(c, common.ErrInvalidRequest.WithErr(fmt.Errorf("dishes[%d]: %w", i, err)))
			return
		}
		dishes[i] = dish
	}

	common.LogInfo("開始處理批次檢查",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("dishes", len(dishes)),
	)

	reports := h.checker.CheckBatch(c.Request.Context(), dishes)
	resp := BatchResponse{Results: reports, Total: len(reports)}
	for _, r := range reports {
		if r.Success {
			resp.Succeeded++
		}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleRecommendations 依購物車內容推薦商品
func (h *Handler) HandleRecommendations(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrInvalidRequest.WithErr(err))
		return
	}
	if len(req.ItemIDs) == 0 && len(req.Names) == 0 {
		h.fail(c, common.ErrInvalidRequest.WithErr(errors.New("item_ids or names is required")))
		return
	}

	ctx := c.Request.Context()
	sources, err := h.cartItems(ctx, req)
	if err != nil {
		h.fail(c, common.ErrServiceUnavailable.WithErr(err))
		return
	}
	if len(sources) == 0 {
		h.fail(c, common.ErrNotFound.WithErr(errors.New("no catalog items match the cart")))
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = h.limit
	}
	c.JSON(http.StatusOK, RecommendationResponse{
		Sources:         sources,
		Recommendations: h.recommender.Recommend(ctx, sources, limit),
	})
}

// HandleAlternatives 查詢替代商品
func (h *Handler) HandleAlternatives(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		h.fail(c, common.ErrInvalidRequest.WithErr(errors.New("name is required")))
		return
	}
	category := strings.TrimSpace(c.Query("category"))

	alternatives, err := h.alternatives.FindAlternatives(c.Request.Context(), name, category)
	if err != nil {
		h.fail(c, common.ErrServiceUnavailable.WithErr(err))
		return
	}
	c.JSON(http.StatusOK, AlternativesResponse{Name: name, Category: category, Alternatives: alternatives})
}

// cartItems 依 ID 與名稱找出購物車商品，重複的只保留一筆
func (h *Handler) cartItems(ctx context.Context, req RecommendationRequest) ([]catalog.Item, error) {
	var items []catalog.Item
	if len(req.ItemIDs) > 0 {
		found, err := h.lookup.FindByID(ctx, req.ItemIDs)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}
	for _, name := range req.Names {
		found, err := h.lookup.FindByName(ctx, name, false)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}

	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, dup := seen[item.Key()]; dup {
			continue
		}
		seen[item.Key()] = struct{}{}
		out = append(out, item)
	}
	return out, nil
}

func (h *Handler) fail(c *gin.Context, err *common.CustomError) {
	common.LogWarn("請求處理失敗",
		zap.String("request_id", requestid.Get(c)),
		zap.String("code", err.Code),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(err.Status, err.Response(h.debug))
}

func toDishRequest(req CheckRequest) (pipeline.DishRequest, error) {
	diet, err := recipe.ParseDietType(req.DietType)
	if err != nil {
		return pipeline.DishRequest{}, err
	}
	servings := req.Servings
	if servings == 0 {
		servings = 1
	}
	name := strings.TrimSpace(req.DishName)
	if name == "" {
		return pipeline.DishRequest{}, errors.New("dish_name is required")
	}
	return pipeline.DishRequest{DishName: name, Servings: servings, DietType: diet}, nil
}
