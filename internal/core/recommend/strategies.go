package recommend

import (
	"context"
	"fmt"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/pkg/common"
)

const (
	StrategySimilarity    = "ingredient_similarity"
	StrategyCategory      = "category_popularity"
	StrategyComplementary = "complementary_pairing"

	categoryScore      = 0.7
	complementaryScore = 0.8
)

// SimilarityStrategy 依分類、標籤與名稱關鍵字找相似商品
type SimilarityStrategy struct {
	catalog      catalog.Lookup
	tables       Tables
	minRelevance float64
}

// NewSimilarityStrategy 創建相似商品策略，只保留分數大於 minRelevance 的候選
func NewSimilarityStrategy(lookup catalog.Lookup, tables Tables, minRelevance float64) *SimilarityStrategy {
	return &SimilarityStrategy{catalog: lookup, tables: tables, minRelevance: minRelevance}
}

func (s *SimilarityStrategy) Name() string { return StrategySimilarity }

// Candidates 對每個來源商品查詢同分類、同標籤、名稱關鍵字相符的商品
func (s *SimilarityStrategy) Candidates(ctx context.Context, sources []catalog.Item, exclude map[string]struct{}) ([]Candidate, error) {
	var out []Candidate
	for _, src := range sources {
		pool, err := s.pool(ctx, src)
		if err != nil {
			return nil, err
		}
		for _, item := range pool {
			if isExcluded(item, exclude) {
				continue
			}
			score := s.tables.RelevanceScore(src, item)
			if score <= s.minRelevance {
				continue
			}
			out = append(out, Candidate{
				Item:     item,
				Score:    score,
				Strategy: StrategySimilarity,
				Reason:   fmt.Sprintf("Similar to %s", src.Name),
			})
		}
	}
	return out, nil
}

func (s *SimilarityStrategy) pool(ctx context.Context, src catalog.Item) ([]catalog.Item, error) {
	var pool []catalog.Item
	if src.Category != "" {
		items, err := s.catalog.FindByCategory(ctx, src.Category, true)
		if err != nil {
			return nil, err
		}
		pool = append(pool, items...)
	}
	for _, tag := range src.Tags {
		items, err := s.catalog.FindByTagOrKeyword(ctx, tag, true)
		if err != nil {
			return nil, err
		}
		pool = append(pool, items...)
	}
	for token := range s.tables.tokens(src.Name) {
		items, err := s.catalog.FindByNameContains(ctx, token, true)
		if err != nil {
			return nil, err
		}
		pool = append(pool, items...)
	}
	return pool, nil
}

// CategoryStrategy 推薦同分類的商品
type CategoryStrategy struct {
	catalog catalog.Lookup
}

// NewCategoryStrategy 創建同分類策略
func NewCategoryStrategy(lookup catalog.Lookup) *CategoryStrategy {
	return &CategoryStrategy{catalog: lookup}
}

func (s *CategoryStrategy) Name() string { return StrategyCategory }

// Candidates 來源商品所屬分類中的其他商品，固定 0.7 分
func (s *CategoryStrategy) Candidates(ctx context.Context, sources []catalog.Item, exclude map[string]struct{}) ([]Candidate, error) {
	seen := make(map[string]struct{})
	var out []Candidate
	for _, src := range sources {
		category := common.NormalizeName(src.Category)
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}

		items, err := s.catalog.FindByCategory(ctx, src.Category, true)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if isExcluded(item, exclude) {
				continue
			}
			out = append(out, Candidate{
				Item:     item,
				Score:    categoryScore,
				Strategy: StrategyCategory,
				Reason:   fmt.Sprintf("Popular in %s", src.Category),
			})
		}
	}
	return out, nil
}

// ComplementaryStrategy 依粗分類搭配表推薦
type ComplementaryStrategy struct {
	catalog catalog.Lookup
	tables  Tables
}

// NewComplementaryStrategy 創建搭配策略
func NewComplementaryStrategy(lookup catalog.Lookup, tables Tables) *ComplementaryStrategy {
	return &ComplementaryStrategy{catalog: lookup, tables: tables}
}

func (s *ComplementaryStrategy) Name() string { return StrategyComplementary }

// Candidates 找出來源粗分類的搭配分類商品，只排除購物車中的商品，固定 0.8 分
func (s *ComplementaryStrategy) Candidates(ctx context.Context, sources []catalog.Item, exclude map[string]struct{}) ([]Candidate, error) {
	seenTypes := make(map[string]struct{})
	var sourceTypes []string
	for _, src := range sources {
		for _, typ := range s.tables.Classify(src) {
			if _, ok := seenTypes[typ]; !ok {
				seenTypes[typ] = struct{}{}
				sourceTypes = append(sourceTypes, typ)
			}
		}
	}

	searched := make(map[string]struct{})
	var out []Candidate
	for _, typ := range sourceTypes {
		for _, complement := range s.tables.Complements(typ) {
			if _, ok := searched[complement]; ok {
				continue
			}
			searched[complement] = struct{}{}

			items, err := s.search(ctx, complement)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				if isExcluded(item, exclude) {
					continue
				}
				out = append(out, Candidate{
					Item:     item,
					Score:    complementaryScore,
					Strategy: StrategyComplementary,
					Reason:   fmt.Sprintf("Goes well with %s", typ),
				})
			}
		}
	}
	return out, nil
}

// search 以搭配分類的關鍵字查詢名稱與標籤
func (s *ComplementaryStrategy) search(ctx context.Context, complement string) ([]catalog.Item, error) {
	seen := make(map[string]struct{})
	var out []catalog.Item
	for _, kw := range s.tables.keywordsFor(complement) {
		byName, err := s.catalog.FindByNameContains(ctx, kw, true)
		if err != nil {
			return nil, err
		}
		byTag, err := s.catalog.FindByTagOrKeyword(ctx, kw, true)
		if err != nil {
			return nil, err
		}
		for _, item := range append(byName, byTag...) {
			if _, ok := seen[item.Key()]; ok {
				continue
			}
			seen[item.Key()] = struct{}{}
			out = append(out, item)
		}
	}
	return out, nil
}
