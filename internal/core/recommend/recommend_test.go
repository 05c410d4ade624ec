package recommend

import (
	"context"
	"errors"
	"testing"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/core/catalog/catalogtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStrategy struct {
	name       string
	candidates []Candidate
	err        error
	panics     bool
}

func (s fixedStrategy) Name() string { return s.name }

func (s fixedStrategy) Candidates(ctx context.Context, sources []catalog.Item, exclude map[string]struct{}) ([]Candidate, error) {
	if s.panics {
		panic("strategy exploded")
	}
	return s.candidates, s.err
}

func itemByName(t *testing.T, name string) catalog.Item {
	t.Helper()
	for _, item := range catalogtest.SampleItems() {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("no fixture item %q", name)
	return catalog.Item{}
}

func candidateNames(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Item.Name
	}
	return out
}

func TestRelevanceScore(t *testing.T) {
	tables := DefaultTables()
	penne := itemByName(t, "Penne Pasta")

	assert.Equal(t, 1.0, tables.RelevanceScore(penne, penne))
	assert.InDelta(t, 0.675, tables.RelevanceScore(penne, itemByName(t, "Spaghetti")), 1e-9)

	noPrice := catalog.Item{Name: "Fresh Penne", Category: "Other"}
	assert.InDelta(t, 0.4*(1.0/2.0), tables.RelevanceScore(noPrice, catalog.Item{Name: "Penne Pasta"}), 1e-9)
}

func TestClassify(t *testing.T) {
	tables := DefaultTables()
	assert.Equal(t, []string{"pasta"}, tables.Classify(itemByName(t, "Penne Pasta")))
	assert.Equal(t, []string{"cheese"}, tables.Classify(itemByName(t, "Parmesan Cheese")))
	assert.Equal(t, []string{"sauce"}, tables.Classify(itemByName(t, "Tomato Sauce")))
	assert.Equal(t, []string{"oil"}, tables.Classify(itemByName(t, "Olive Oil")))
	assert.Empty(t, tables.Classify(catalog.Item{Name: "Dish Soap", Category: "Household"}))
}

func TestDeduplicationKeepsHighestScore(t *testing.T) {
	sauce := itemByName(t, "Tomato Sauce")
	engine := NewEngineWithStrategies(8,
		fixedStrategy{name: "low", candidates: []Candidate{{Item: sauce, Score: 0.4, Strategy: "low"}}},
		fixedStrategy{name: "high", candidates: []Candidate{{Item: sauce, Score: 0.9, Strategy: "high"}}},
	)

	result := engine.Recommend(context.Background(), nil, 0)

	require.Len(t, result, 1)
	assert.Equal(t, 0.9, result[0].Score)
	assert.Equal(t, "high", result[0].Strategy)
}

func TestFailingStrategiesAreIsolated(t *testing.T) {
	basil := itemByName(t, "Fresh Basil")
	engine := NewEngineWithStrategies(8,
		fixedStrategy{name: "panics", panics: true},
		fixedStrategy{name: "errors", err: errors.New("catalog timeout"), candidates: []Candidate{{Item: itemByName(t, "Garlic"), Score: 1}}},
		fixedStrategy{name: "ok", candidates: []Candidate{{Item: basil, Score: 1.7}}},
	)

	result := engine.Recommend(context.Background(), nil, 0)

	require.Len(t, result, 1)
	assert.Equal(t, "Fresh Basil", result[0].Item.Name)
	assert.Equal(t, 1.0, result[0].Score)
}

func TestRecommendNeverReturnsSourceItems(t *testing.T) {
	engine := NewEngine(catalogtest.Memory(), DefaultTables(), 0.6, 8)
	sources := []catalog.Item{
		itemByName(t, "Penne Pasta"),
		itemByName(t, "Parmesan Cheese"),
		{Name: "garlic"},
	}

	result := engine.Recommend(context.Background(), sources, 50)

	require.NotEmpty(t, result)
	for _, c := range result {
		assert.NotEqual(t, "p-penne", c.Item.ID)
		assert.NotEqual(t, "c-parmesan", c.Item.ID)
		assert.NotEqual(t, "Garlic", c.Item.Name)
		assert.GreaterOrEqual(t, c.Score, 0.0)
		assert.LessOrEqual(t, c.Score, 1.0)
	}
	for i := 1; i < len(result); i++ {
		assert.GreaterOrEqual(t, result[i-1].Score, result[i].Score)
	}
}

func TestRecommendMergesStrategies(t *testing.T) {
	engine := NewEngine(catalogtest.Memory(), DefaultTables(), 0.6, 8)
	sources := []catalog.Item{itemByName(t, "Penne Pasta"), itemByName(t, "Parmesan Cheese")}

	result := engine.Recommend(context.Background(), sources, 0)

	assert.Equal(t, []string{
		"Baguette", "Fresh Basil", "Garlic", "Mozzarella Cheese", "Olive Oil", "Pesto Sauce",
		"Spaghetti", "Tomato Sauce",
	}, candidateNames(result))
	// Spaghetti 同時來自三個策略，保留搭配策略的最高分
	assert.Equal(t, StrategyComplementary, result[6].Strategy)
	assert.Equal(t, 0.8, result[6].Score)

	limited := engine.Recommend(context.Background(), sources, 3)
	assert.Len(t, limited, 3)
}

func TestComplementaryPairingForPastaAndCheese(t *testing.T) {
	tables := DefaultTables()
	items := append(catalogtest.SampleItems(),
		catalog.Item{ID: "s-marinara", Name: "Marinara Pasta Sauce", Category: "Sauces", Tags: []string{"sauce"}, Quantity: 8, Unit: "l", Price: 5},
		catalog.Item{ID: "c-cheddar", Name: "Cheddar Cheese", Category: "Dairy", Tags: []string{"cheese"}, Quantity: 3, Unit: "kg", Price: 14},
	)
	strategy := NewComplementaryStrategy(catalog.NewMemory(items), tables)
	sources := []catalog.Item{itemByName(t, "Penne Pasta"), itemByName(t, "Parmesan Cheese")}
	exclude := map[string]struct{}{"p-penne": {}, "c-parmesan": {}}

	candidates, err := strategy.Candidates(context.Background(), sources, exclude)
	require.NoError(t, err)

	names := candidateNames(candidates)
	// 名稱含 pasta 的醬料與購物車外的其他起司都要推薦
	assert.Contains(t, names, "Marinara Pasta Sauce")
	assert.Contains(t, names, "Cheddar Cheese")
	assert.Contains(t, names, "Tomato Sauce")
	assert.NotContains(t, names, "Penne Pasta")
	assert.NotContains(t, names, "Parmesan Cheese")

	hasSauce := false
	for _, c := range candidates {
		assert.Equal(t, 0.8, c.Score)
		assert.Equal(t, StrategyComplementary, c.Strategy)
		types := tables.Classify(c.Item)
		if len(types) > 0 && types[0] == "sauce" {
			hasSauce = true
		}
	}
	assert.True(t, hasSauce)
}

func TestSimilarityThreshold(t *testing.T) {
	strategy := NewSimilarityStrategy(catalogtest.Memory(), DefaultTables(), 0.6)
	penne := itemByName(t, "Penne Pasta")

	candidates, err := strategy.Candidates(context.Background(), []catalog.Item{penne}, map[string]struct{}{penne.Key(): {}})
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		assert.Greater(t, c.Score, 0.6)
		assert.Equal(t, "Spaghetti", c.Item.Name)
	}
}
