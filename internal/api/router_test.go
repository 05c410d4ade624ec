package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopping-assistant/internal/api/handlers/health"
	"shopping-assistant/internal/core/catalog/catalogtest"
	"shopping-assistant/internal/core/matching"
	"shopping-assistant/internal/core/pipeline"
	"shopping-assistant/internal/core/recipe"
	"shopping-assistant/internal/core/recommend"
	"shopping-assistant/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Version: "test", Env: "test"},
		Server:    config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 4 << 10},
		Recommend: config.RecommendConfig{Limit: 5, MinRelevance: 0.6},
		Batch:     config.BatchConfig{Workers: 2, MaxDishes: 3},
		RateLimit: config.RateLimitConfig{Enabled: true, Requests: 100, Window: time.Minute},
	}
}

func testDependencies(probes ...health.Probe) Dependencies {
	lookup := catalogtest.Memory()
	alternatives := matching.NewAlternativesFinder(lookup, 5)
	resolver := matching.NewResolver(lookup, matching.DefaultSynonyms(), alternatives)
	engine := recommend.NewEngine(lookup, recommend.DefaultTables(), 0.6, 5)
	service := recipe.NewService(recipe.NewGenerator(nil, nil, recipe.DefaultFallbackBook()), nil)

	return Dependencies{
		Checker:      pipeline.NewOrchestrator(service, resolver, engine, pipeline.WithWorkers(2)),
		Recommender:  engine,
		Alternatives: alternatives,
		Catalog:      lookup,
		Probes:       probes,
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, deps Dependencies) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := SetupRouter(cfg, deps)
	require.NoError(t, err)
	return router
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSetupRouterRequiresDependencies(t *testing.T) {
	_, err := SetupRouter(testConfig(), Dependencies{})
	assert.Error(t, err)
}

func TestShoppingCheckEndToEnd(t *testing.T) {
	router := newTestRouter(t, testConfig(), testDependencies())

	w := post(router, "/api/v1/shopping/check", `{"dish_name":"Chicken Pasta","servings":2,"diet_type":"non-veg"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var report pipeline.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.Success)
	require.NotNil(t, report.Recipe)
	assert.Equal(t, recipe.SourceFallback, report.Recipe.Source)
	assert.Len(t, report.Ingredients, len(report.Recipe.Ingredients))
	assert.Equal(t, len(report.Ingredients), len(report.Available)+len(report.Missing))
	assert.LessOrEqual(t, len(report.Recommendations), 5)
}

func TestShoppingBatchEndToEnd(t *testing.T) {
	router := newTestRouter(t, testConfig(), testDependencies())

	w := post(router, "/api/v1/shopping/batch", `{"dishes":[{"dish_name":"Red Pasta"},{"dish_name":"Baked Spaghetti","servings":4}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []pipeline.Report `json:"results"`
		Total   int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Red Pasta", resp.Results[0].DishName)
	assert.Equal(t, "Baked Spaghetti", resp.Results[1].DishName)

	w = post(router, "/api/v1/shopping/batch", `{"dishes":[{"dish_name":"a"},{"dish_name":"b"},{"dish_name":"c"},{"dish_name":"d"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BATCH_TOO_LARGE")
}

func TestDuplicatePostIsRejected(t *testing.T) {
	cfg := testConfig()
	cfg.DedupWindow = time.Minute
	router := newTestRouter(t, cfg, testDependencies())

	body := `{"names":["Garlic"]}`
	assert.Equal(t, http.StatusOK, post(router, "/api/v1/recommendations", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(router, "/api/v1/recommendations", body).Code)
	assert.Equal(t, http.StatusOK, post(router, "/api/v1/recommendations", `{"names":["Onion"]}`).Code)
}

func TestRateLimitApplies(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Hour}
	router := newTestRouter(t, cfg, testDependencies())

	assert.Equal(t, http.StatusOK, get(router, "/api/v1/alternatives?name=Fusilli").Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/v1/alternatives?name=Onion").Code)
	w := get(router, "/api/v1/alternatives?name=Garlic")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))

	// 健康檢查不受限流影響
	assert.Equal(t, http.StatusOK, get(router, "/live").Code)
}

func TestBodySizeLimit(t *testing.T) {
	router := newTestRouter(t, testConfig(), testDependencies())

	big := `{"dish_name":"` + strings.Repeat("x", 8<<10) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shopping/check", bytes.NewBufferString(big))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, testConfig(), testDependencies(
		health.Probe{Name: "database", Check: func(context.Context) error { return nil }},
	))

	w := get(router, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var resp health.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)

	w = get(router, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	assert.Equal(t, http.StatusOK, get(router, "/live").Code)
}

func TestReadinessFailsWhenProbeFails(t *testing.T) {
	router := newTestRouter(t, testConfig(), testDependencies(
		health.Probe{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }},
	))

	w := get(router, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not_ready")
	assert.Contains(t, w.Body.String(), "dial tcp: refused")
}
