package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-assistant-api/internal/config"
)

type probeFunc func(ctx context.Context) error

func (f probeFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

var (
	healthy = probeFunc(func(context.Context) error { return nil })
	broken  = probeFunc(func(context.Context) error { return errors.New("connection refused") })
)

func serveReady(t *testing.T, h *HealthHandler) (int, readinessResponse) {
	t.Helper()
	r := gin.New()
	r.GET("/ready", h.Ready)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var resp readinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		deps       []dependency
		wantCode   int
		wantStatus map[string]string
	}{
		{
			name: "all healthy",
			deps: []dependency{
				{name: "postgres", probe: healthy, required: true},
				{name: "redis", probe: healthy, required: true},
			},
			wantCode:   http.StatusOK,
			wantStatus: map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name: "required failing",
			deps: []dependency{
				{name: "postgres", probe: broken, required: true},
				{name: "redis", probe: healthy, required: true},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: map[string]string{"postgres": "error", "redis": "ok"},
		},
		{
			name: "optional failing is degraded",
			deps: []dependency{
				{name: "postgres", probe: healthy, required: true},
				{name: "milvus", probe: broken},
			},
			wantCode:   http.StatusOK,
			wantStatus: map[string]string{"postgres": "ok", "milvus": "degraded"},
		},
		{
			name: "optional absent is disabled",
			deps: []dependency{
				{name: "postgres", probe: healthy, required: true},
				{name: "milvus"},
			},
			wantCode:   http.StatusOK,
			wantStatus: map[string]string{"postgres": "ok", "milvus": "disabled"},
		},
		{
			name:       "required absent",
			deps:       []dependency{{name: "redis", required: true}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: map[string]string{"redis": "missing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := serveReady(t, &HealthHandler{deps: tt.deps})

			assert.Equal(t, tt.wantCode, code)
			for name, status := range tt.wantStatus {
				require.Contains(t, resp.Checks, name)
				assert.Equal(t, status, resp.Checks[name].Status, name)
			}
			if code == http.StatusOK {
				assert.Equal(t, "ok", resp.Status)
			} else {
				assert.Equal(t, "not_ready", resp.Status)
			}
		})
	}
}

func TestNewHealthHandlerMilvusRequirement(t *testing.T) {
	tests := []struct {
		backend  string
		required bool
	}{
		{config.VectorBackendMilvus, true},
		{config.VectorBackendRedis, false},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Vector.Backend = tt.backend

			h := NewHealthHandler(cfg, nil, nil, nil)
			require.Len(t, h.deps, 3)
			for _, d := range h.deps {
				assert.Nil(t, d.probe, "nil clients must not become typed-nil probes")
			}
			assert.Equal(t, tt.required, h.deps[2].required)
		})
	}
}

func TestHealth(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Version = "1.2.3"
	h := NewHealthHandler(cfg, nil, nil, nil)

	r := gin.New()
	r.GET("/health", h.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, w.Body.String())
}
