package recipe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shopping-assistant/internal/core/ai/cache"
	"shopping-assistant/internal/core/ai/openrouter"
	"shopping-assistant/internal/core/ai/retry"
	"shopping-assistant/internal/infrastructure/config"
	"shopping-assistant/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
  "ingredients": [
    {"name": "Penne Pasta", "quantity": 0.2, "unit": "kg", "category": "Pasta", "isEssential": true},
    {"name": "Garlic", "quantity": "3"},
    {"name": "  "}
  ],
  "instructions": [
    {"stepNumber": 7, "instruction": "Boil pasta", "estimatedTime": 10},
    {"instruction": "Serve"}
  ],
  "prepTime": 5,
  "cookTime": "15 minutes",
  "nutritionInfo": {"calories": 500, "protein": "20g"},
  "tags": ["pasta", ""]
}`

type scriptedCompleter struct {
	mu        sync.Mutex
	responses []func() (string, error)
	calls     int
}

func (c *scriptedCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.calls
	c.calls++
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	return c.responses[idx]()
}

func ok(content string) func() (string, error) {
	return func() (string, error) { return content, nil }
}

func status(code int) func() (string, error) {
	return func() (string, error) { return "", &openrouter.StatusError{StatusCode: code} }
}

func noSleepExecutor() (*retry.Executor, *[]time.Duration) {
	var slept []time.Duration
	e := retry.NewExecutor(retry.DefaultPolicy())
	e.Sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return e, &slept
}

func ingredientNames(r *Recipe) []string {
	names := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		names[i] = strings.ToLower(ing.Name)
	}
	return names
}

func TestGenerateWithoutCredentialsUsesFallback(t *testing.T) {
	book := DefaultFallbackBook()
	g := NewGenerator(nil, nil, book)

	one := g.Generate(context.Background(), "Chicken Pasta", 1, DietNonVeg)
	two := g.Generate(context.Background(), "Chicken Pasta", 2, DietNonVeg)

	assert.Equal(t, SourceFallback, two.Source)
	assert.Equal(t, "chicken pasta", book.Match("Chicken Pasta"))
	assert.Contains(t, ingredientNames(two), "chicken breast")
	assert.Contains(t, ingredientNames(two), "penne pasta")

	require.Equal(t, len(one.Ingredients), len(two.Ingredients))
	for i := range one.Ingredients {
		assert.InDelta(t, one.Ingredients[i].Quantity*2, two.Ingredients[i].Quantity, 0.001)
	}
}

func TestFallbackLongestKeyWins(t *testing.T) {
	book := NewFallbackBook(map[string]FallbackRecipe{
		"pasta":           {DishName: "Pasta"},
		"baked spaghetti": {DishName: "Baked"},
		"spaghetti":       {DishName: "Spaghetti"},
	}, FallbackRecipe{DishName: "Generic"})

	assert.Equal(t, "baked spaghetti", book.Match("My Baked  Spaghetti bake"))
	assert.Equal(t, "spaghetti", book.Match("spaghetti"))
	assert.Equal(t, "", book.Match("Fried Rice"))

	r := book.Recipe("", 0, DietVeg)
	assert.Equal(t, "Generic", r.DishName)
	assert.Equal(t, 1, r.Servings)
}

func TestGenerateNormalizesPayload(t *testing.T) {
	e, _ := noSleepExecutor()
	g := NewGenerator(&scriptedCompleter{responses: []func() (string, error){ok("```json\n" + validPayload + "\n```")}}, e, DefaultFallbackBook())

	r := g.Generate(context.Background(), "Garlic Pasta", 2, DietVeg)

	assert.Equal(t, SourceAI, r.Source)
	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, 0.2, r.Ingredients[0].Quantity)
	assert.Equal(t, "Garlic", r.Ingredients[1].Name)
	assert.Equal(t, 3.0, r.Ingredients[1].Quantity)
	assert.Equal(t, "pieces", r.Ingredients[1].Unit)
	assert.Equal(t, "Common", r.Ingredients[1].Category)
	assert.True(t, r.Ingredients[1].IsEssential)

	require.Len(t, r.Instructions, 2)
	assert.Equal(t, 1, r.Instructions[0].StepNumber)
	assert.Equal(t, 10, r.Instructions[0].EstimatedTime)
	assert.Equal(t, 2, r.Instructions[1].StepNumber)
	assert.Equal(t, 5, r.Instructions[1].EstimatedTime)

	assert.Equal(t, 15, r.CookTime)
	assert.Equal(t, 20.0, r.Nutrition.Protein)
	assert.Equal(t, []string{"pasta"}, r.Tags)
}

func TestGenerateRetriesInvalidPayloadThenSucceeds(t *testing.T) {
	e, slept := noSleepExecutor()
	completer := &scriptedCompleter{responses: []func() (string, error){
		ok(`{"ingredients": [], "instructions": [{"instruction": "x"}]}`),
		ok(validPayload),
	}}
	g := NewGenerator(completer, e, DefaultFallbackBook())

	r := g.Generate(context.Background(), "Garlic Pasta", 2, DietVeg)

	assert.Equal(t, SourceAI, r.Source)
	assert.Equal(t, 2, completer.calls)
	assert.Equal(t, []time.Duration{time.Second}, *slept)
}

func TestGenerateRateLimitedFallsBackAfterThreeAttempts(t *testing.T) {
	e, slept := noSleepExecutor()
	completer := &scriptedCompleter{responses: []func() (string, error){status(http.StatusTooManyRequests)}}
	g := NewGenerator(completer, e, DefaultFallbackBook())

	r := g.Generate(context.Background(), "Red Pasta", 1, DietVeg)

	assert.Equal(t, SourceFallback, r.Source)
	assert.Equal(t, 3, completer.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
	assert.Contains(t, ingredientNames(r), "tomato sauce")
}

func TestGenerateUnauthorizedFallsBackImmediately(t *testing.T) {
	e, slept := noSleepExecutor()
	completer := &scriptedCompleter{responses: []func() (string, error){status(http.StatusUnauthorized)}}
	g := NewGenerator(completer, e, DefaultFallbackBook())

	r := g.Generate(context.Background(), "Unknown Dish", 1, DietMixed)

	assert.Equal(t, SourceFallback, r.Source)
	assert.Equal(t, 1, completer.calls)
	assert.Empty(t, *slept)
	assert.NotEmpty(t, r.Ingredients)
	assert.NotEmpty(t, r.Instructions)
}

func TestGenerateUsesCache(t *testing.T) {
	e, _ := noSleepExecutor()
	c := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Hour})
	defer c.Close()

	completer := &scriptedCompleter{responses: []func() (string, error){ok(validPayload)}}
	g := NewGenerator(completer, e, DefaultFallbackBook(), WithCache(c))

	first := g.Generate(context.Background(), "Garlic Pasta", 2, DietVeg)
	second := g.Generate(context.Background(), "garlic pasta", 2, DietVeg)

	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, first.Ingredients, second.Ingredients)
}

func TestGenerateThroughOpenRouter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[{"message":{"role":"assistant","content":` + quote(validPayload) + `}}]}`))
	}))
	defer server.Close()

	client := openrouter.NewClient(config.OpenRouterConfig{APIKey: "sk-test", BaseURL: server.URL, Model: "m", Timeout: 5 * time.Second})
	e, _ := noSleepExecutor()
	g := NewGenerator(client, e, DefaultFallbackBook())

	r := g.Generate(context.Background(), "Garlic Pasta", 2, DietVeg)
	assert.Equal(t, SourceAI, r.Source)
	assert.Len(t, r.Ingredients, 2)
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func TestParsePayloadAcceptsUnquotedKeys(t *testing.T) {
	content := "```json\n{ingredients: [{name: \"Garlic\", quantity: 2}], instructions: [{instruction: \"Chop\"}]}\n```"

	payload, err := parsePayload(content)
	require.NoError(t, err)
	require.Len(t, payload.Ingredients, 1)
	assert.Equal(t, "Garlic", payload.Ingredients[0].Name)
	require.Len(t, payload.Instructions, 1)
	assert.Equal(t, "Chop", payload.Instructions[0].Instruction)
}

func TestParsePayloadRejectsGarbage(t *testing.T) {
	_, err := parsePayload("sorry, I cannot help with that")
	assert.ErrorIs(t, err, common.ErrInvalidPayload)

	_, err = parsePayload(`{"ingredients": [], "instructions": [{"instruction": "x"}]}`)
	assert.ErrorIs(t, err, common.ErrInvalidPayload)
}
