package catalog_test

import (
	"context"
	"testing"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/core/catalog/catalogtest"
	"shopping-assistant/internal/infrastructure/config"
	"shopping-assistant/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func newSQLStore(t *testing.T) *catalog.Store {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, catalog.Models()...))
	t.Cleanup(func() { _ = database.Close(db) })

	store := catalog.NewStore(db)
	require.NoError(t, store.Upsert(context.Background(), catalogtest.SampleItems()))
	return store
}

func lookups(t *testing.T) map[string]catalog.Lookup {
	return map[string]catalog.Lookup{
		"memory": catalogtest.Memory(),
		"sqlite": newSQLStore(t),
	}
}

func TestLookupQueries(t *testing.T) {
	ctx := context.Background()
	for name, lookup := range lookups(t) {
		t.Run(name, func(t *testing.T) {
			items, err := lookup.FindByName(ctx, "penne  PASTA", true)
			require.NoError(t, err)
			assert.Equal(t, []string{"Penne Pasta"}, names(items))
			assert.Equal(t, "p-penne", items[0].ID)
			assert.Equal(t, 20.0, items[0].Quantity)
			assert.Equal(t, "kg", items[0].Unit)

			items, err = lookup.FindByNameContains(ctx, "cheese", true)
			require.NoError(t, err)
			assert.Equal(t, []string{"Mozzarella Cheese", "Parmesan Cheese"}, names(items))

			items, err = lookup.FindByTagOrKeyword(ctx, "pasta", true)
			require.NoError(t, err)
			assert.Equal(t, []string{"Penne Pasta", "Spaghetti"}, names(items))

			items, err = lookup.FindByTagOrKeyword(ctx, "pasta", false)
			require.NoError(t, err)
			assert.Equal(t, []string{"Fusilli", "Penne Pasta", "Spaghetti"}, names(items))

			items, err = lookup.FindByCategory(ctx, "sauce", true)
			require.NoError(t, err)
			assert.Equal(t, []string{"Pesto Sauce", "Tomato Sauce"}, names(items))

			items, err = lookup.FindByID(ctx, []string{"o-olive", "missing"})
			require.NoError(t, err)
			assert.Equal(t, []string{"Olive Oil"}, names(items))

			items, err = lookup.FindByNameContains(ctx, "%", true)
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestStoreUpsertUpdatesStock(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []catalog.Item{{Name: "penne pasta", Category: "Pasta", Quantity: 0, Unit: "kg", Price: 5}}))

	items, err := store.FindByName(ctx, "Penne Pasta", true)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = store.FindByName(ctx, "Penne Pasta", false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p-penne", items[0].ID)
	assert.Equal(t, 5.0, items[0].Price)
}

func TestTagsWithHTMLCharactersMatchInAllLookups(t *testing.T) {
	ctx := context.Background()
	item := catalog.Item{ID: "k-mac", Name: "Elbow Macaroni Kit", Category: "Pasta", Tags: []string{"mac & cheese"}, Keywords: []string{"<kids>"}, Quantity: 6, Unit: "pieces", Price: 3}

	store := newSQLStore(t)
	require.NoError(t, store.Upsert(ctx, []catalog.Item{item}))
	all := map[string]catalog.Lookup{
		"memory": catalog.NewMemory(append(catalogtest.SampleItems(), item)),
		"sqlite": store,
	}

	for name, lookup := range all {
		t.Run(name, func(t *testing.T) {
			items, err := lookup.FindByTagOrKeyword(ctx, "Mac & Cheese", true)
			require.NoError(t, err)
			assert.Equal(t, []string{"Elbow Macaroni Kit"}, names(items))

			items, err = lookup.FindByTagOrKeyword(ctx, "<kids>", true)
			require.NoError(t, err)
			assert.Equal(t, []string{"Elbow Macaroni Kit"}, names(items))
		})
	}
}

func TestStringListKeepsHTMLCharacters(t *testing.T) {
	v, err := catalog.StringList{"mac & cheese", "<b>"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["mac & cheese","<b>"]`, v)

	var back catalog.StringList
	require.NoError(t, back.Scan(v))
	assert.Equal(t, catalog.StringList{"mac & cheese", "<b>"}, back)
}

func TestItemKey(t *testing.T) {
	assert.Equal(t, "abc", catalog.Item{ID: "abc", Name: "Penne"}.Key())
	assert.Equal(t, "penne pasta", catalog.Item{Name: " Penne  Pasta"}.Key())
}

func TestConvertQuantity(t *testing.T) {
	tests := []struct {
		qty      float64
		from, to string
		want     float64
	}{
		{400, "g", "kg", 0.4},
		{0.4, "kg", "g", 400},
		{250, "ml", "l", 0.25},
		{2, "Liters", "ml", 2000},
		{3, "pieces", "kg", 3},
		{2, "tbsp", "ml", 2},
		{0.4, "kg", "KG", 0.4},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, catalog.ConvertQuantity(tt.qty, tt.from, tt.to), 1e-9, "%v %s -> %s", tt.qty, tt.from, tt.to)
	}
}

func TestParseSeed(t *testing.T) {
	items, err := catalog.ParseSeed([]byte(`
items:
  - name: Penne Pasta
    category: Pasta
    tags: [pasta]
    quantity: 20
    unit: kg
    price: 4
`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"pasta"}, items[0].Tags)

	_, err = catalog.ParseSeed([]byte("items:\n  - category: Pasta\n"))
	assert.Error(t, err)
}
