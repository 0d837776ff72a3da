package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"novel-assistant-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func (s *stubLimiter) Remaining(context.Context, string, int, time.Duration) (int, error) {
	return 7, nil
}

func run(mw gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(Recovery(), mw)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(*gin.Context) { panic("boom") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRateLimit(t *testing.T) {
	enabled := RateLimitConfig{Enabled: true, Scope: "ai", Limit: 5, Window: time.Minute}

	tests := []struct {
		name      string
		cfg       RateLimitConfig
		limiter   *stubLimiter
		want      int
		remaining string
		calls     int
	}{
		{"allowed", enabled, &stubLimiter{allow: true}, http.StatusNoContent, "7", 1},
		{"rejected", enabled, &stubLimiter{}, http.StatusTooManyRequests, "0", 1},
		{"limiter error fails open", enabled, &stubLimiter{err: errors.New("redis down")}, http.StatusNoContent, "", 1},
		{"disabled", RateLimitConfig{Limit: 5}, &stubLimiter{}, http.StatusNoContent, "", 0},
		{"zero limit", RateLimitConfig{Enabled: true}, &stubLimiter{}, http.StatusNoContent, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := run(RateLimit(tt.cfg, tt.limiter), "/x")

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.remaining, w.Header().Get(RateLimitRemainingHeader))
			assert.Len(t, tt.limiter.keys, tt.calls)
			if tt.calls > 0 {
				assert.Equal(t, "ratelimit:ai:192.0.2.1", tt.limiter.keys[0])
			}
			if tt.want == http.StatusTooManyRequests {
				assert.Contains(t, w.Body.String(), `"error_code":"1006"`)
				assert.Contains(t, w.Body.String(), `"details":"ai"`)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	w := run(RequestID(), "/boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"internal server error"`)
	assert.Contains(t, w.Body.String(), `"error_code":"1007"`)
}

func TestRequestIDPropagation(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestProjectContext(t *testing.T) {
	var got any
	r := gin.New()
	r.Use(ProjectContext())
	r.GET("/projects/:pid", func(c *gin.Context) {
		got = c.Request.Context().Value(logger.ProjectIDKey)
		c.Status(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/projects/42", nil))
	assert.Equal(t, "42", got)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		wantOrigin  string
		credentials string
	}{
		{"wildcard", nil, "*", ""},
		{"explicit", []string{"https://app.example.com"}, "https://app.example.com", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(CORSConfig{AllowedOrigins: tt.origins}))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Origin", "https://app.example.com")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.credentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}
