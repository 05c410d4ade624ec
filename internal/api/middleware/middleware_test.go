package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, 10*time.Second)
	rl.lastTime = now
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	// 0.2 token/s：每 3 秒累積不到一個，但合計 6 秒後應補回一個
	now = now.Add(3 * time.Second)
	assert.False(t, rl.Allow())
	now = now.Add(3 * time.Second)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	now = now.Add(time.Hour)
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestDeduplicatorWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDeduplicator(time.Second)
	d.now = func() time.Time { return now }

	assert.False(t, d.seen("POST:/a:x"))
	assert.True(t, d.seen("POST:/a:x"))
	assert.False(t, d.seen("POST:/a:y"))

	now = now.Add(2 * time.Second)
	assert.False(t, d.seen("POST:/a:x"))

	now = now.Add(time.Minute)
	d.seen("POST:/b")
	assert.Len(t, d.requests, 1)
}

func TestDeduplicationMiddlewarePreservesBody(t *testing.T) {
	r := gin.New()
	r.Use(NewDeduplicator(time.Minute).Middleware())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := c.GetRawData()
		c.String(http.StatusOK, string(body))
	})
	r.GET("/echo", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(method, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/echo", strings.NewReader(body)))
		return w
	}

	w := send(http.MethodPost, "hello")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, "hello").Code)

	assert.Equal(t, http.StatusNoContent, send(http.MethodGet, "").Code)
	assert.Equal(t, http.StatusNoContent, send(http.MethodGet, "").Code)
}

func TestTimeoutReturnsGatewayTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "GATEWAY_TIMEOUT")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoveryConvertsPanic(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
