package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/interfaces/http/handler"
	"novel-assistant-api/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// countingLimiter 按 key 计数的内存限流器
type countingLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

func (l *countingLimiter) Remaining(_ context.Context, key string, limit int, _ time.Duration) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return max(limit-l.counts[key], 0), nil
}

type noHits struct{}

func (noHits) SearchRelatedText(context.Context, int64, string, int) ([]retrieval.Hit, error) {
	return nil, nil
}

type catalog []modelrouter.ModelSpec

func (c catalog) Specs() []modelrouter.ModelSpec { return c }

func newTestRouter(t *testing.T, limiter middleware.RateLimiter) *gin.Engine {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Version = "test"
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	cfg.Security.RateLimit = config.RateLimitConfig{
		Enabled: true,
		Limit:   3,
		AILimit: 1,
		Window:  time.Minute,
	}

	handlers := Handlers{
		Health:       handler.NewHealthHandler(cfg, nil, nil, nil),
		Project:      handler.NewProjectHandler(nil),
		Volume:       handler.NewVolumeHandler(nil, nil),
		Chapter:      handler.NewChapterHandler(nil, nil, nil, nil, nil, cfg.Features),
		Character:    handler.NewCharacterHandler(nil, nil, nil, nil),
		WorldElement: handler.NewWorldElementHandler(nil, nil, nil),
		Clue:         handler.NewClueHandler(nil, nil),
		AI: handler.NewAIHandler(nil, nil, nil, noHits{}, catalog{
			{Name: "grok-4-fast", Provider: modelrouter.ProviderGrok, Tier: modelrouter.TierFast},
		}),
	}
	return New(cfg, handlers, limiter).Engine()
}

func serve(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRoutesRegistered(t *testing.T) {
	engine := newTestRouter(t, nil)

	want := map[string]bool{
		"GET /v1/projects":                         true,
		"POST /v1/projects":                        true,
		"GET /v1/projects/:pid":                    true,
		"PUT /v1/projects/:pid":                    true,
		"DELETE /v1/projects/:pid":                 true,
		"GET /v1/projects/:pid/volumes":            true,
		"POST /v1/projects/:pid/volumes":           true,
		"PUT /v1/volumes/:vid":                     true,
		"DELETE /v1/volumes/:vid":                  true,
		"GET /v1/projects/:pid/chapters":           true,
		"POST /v1/projects/:pid/chapters":          true,
		"GET /v1/chapters/:cid":                    true,
		"PUT /v1/chapters/:cid":                    true,
		"DELETE /v1/chapters/:cid":                 true,
		"GET /v1/chapters/:cid/characters":         true,
		"POST /v1/chapters/:cid/ai/:action":        true,
		"POST /v1/chapters/:cid/analyze":           true,
		"GET /v1/projects/:pid/characters":         true,
		"POST /v1/projects/:pid/characters":        true,
		"PUT /v1/characters/:id":                   true,
		"DELETE /v1/characters/:id":                true,
		"POST /v1/characters/:id/ai/improve":       true,
		"GET /v1/projects/:pid/world-elements":     true,
		"POST /v1/projects/:pid/world-elements":    true,
		"PUT /v1/world-elements/:id":               true,
		"DELETE /v1/world-elements/:id":            true,
		"GET /v1/projects/:pid/clues":              true,
		"POST /v1/projects/:pid/clues":             true,
		"PUT /v1/clues/:id":                        true,
		"DELETE /v1/clues/:id":                     true,
		"POST /v1/projects/:pid/ai/world-skeleton": true,
		"POST /v1/ai/generate":                     true,
		"GET /v1/ai/models":                        true,
		"POST /v1/ai/search":                       true,
		"GET /health":                              true,
		"GET /ready":                               true,
		"GET /live":                                true,
		"GET /metrics":                             true,
	}

	got := map[string]bool{}
	for _, r := range engine.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for route := range want {
		assert.True(t, got[route], "missing route %s", route)
	}
}

func TestSystemEndpoints(t *testing.T) {
	engine := newTestRouter(t, nil)

	w := serve(engine, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = serve(engine, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "no clients configured")

	w = serve(engine, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitScopes(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int{}}
	engine := newTestRouter(t, limiter)
	search := `{"project_id": 1, "query": "storm"}`

	w := serve(engine, http.MethodPost, "/v1/ai/search", search)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get(middleware.RateLimitLimitHeader))
	assert.Equal(t, "0", w.Header().Get(middleware.RateLimitRemainingHeader))

	w = serve(engine, http.MethodPost, "/v1/ai/search", search)
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "ai scope allows one call")

	// 模型列表不挂 AI 限流，只受 api 作用域约束
	w = serve(engine, http.MethodGet, "/v1/ai/models", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Header().Get(middleware.RateLimitLimitHeader))

	w = serve(engine, http.MethodGet, "/v1/ai/models", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "fourth call exceeds api scope")

	w = serve(engine, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code, "system routes are never limited")
}
