package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func request(router *gin.Engine, method, remote string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerIP(t *testing.T) {
	router := newRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "10.0.0.1:1000", nil).Code)
	assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "10.0.0.1:1000", nil).Code)

	w := request(router, http.MethodGet, "10.0.0.1:1000", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")

	// Another client has its own bucket
	assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "10.0.0.2:1000", nil).Code)
}

func TestRateLimitEvictsIdleClients(t *testing.T) {
	limiters := newClientLimiters(RateLimitConfig{RequestsPerSecond: 10, Burst: 10, IdleTTL: time.Minute})
	clock := time.Now()
	limiters.now = func() time.Time { return clock }

	assert.True(t, limiters.allow("a"))
	assert.True(t, limiters.allow("b"))
	assert.Equal(t, 2, limiters.size())

	clock = clock.Add(2 * time.Minute)
	assert.True(t, limiters.allow("c"))
	assert.Equal(t, 1, limiters.size())
}

func TestGlobalRateLimit(t *testing.T) {
	router := newRouter(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))

	assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "10.0.0.1:1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, request(router, http.MethodGet, "10.0.0.2:1", nil).Code)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		cfg         CORSConfig
		method      string
		origin      string
		status      int
		allowOrigin string
	}{
		{
			name:        "wildcard preflight",
			cfg:         DefaultCORSConfig(),
			method:      http.MethodOptions,
			origin:      "http://localhost:5173",
			status:      http.StatusNoContent,
			allowOrigin: "*",
		},
		{
			name:        "listed origin",
			cfg:         CORSConfig{AllowOrigins: []string{"http://editor.local"}, AllowMethods: []string{"GET"}},
			method:      http.MethodGet,
			origin:      "http://editor.local",
			status:      http.StatusOK,
			allowOrigin: "http://editor.local",
		},
		{
			name:   "unlisted origin",
			cfg:    CORSConfig{AllowOrigins: []string{"http://editor.local"}, AllowMethods: []string{"GET"}},
			method: http.MethodGet,
			origin: "http://evil.local",
			status: http.StatusForbidden,
		},
		{
			name:        "empty origins allow all",
			cfg:         CORSConfig{AllowMethods: []string{"GET"}},
			method:      http.MethodGet,
			origin:      "http://any.local",
			status:      http.StatusOK,
			allowOrigin: "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(CORS(tt.cfg))
			headers := map[string]string{"Origin": tt.origin}
			if tt.method == http.MethodOptions {
				headers["Access-Control-Request-Method"] = http.MethodPost
			}

			w := request(router, tt.method, "10.0.0.1:1", headers)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.allowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
