package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/infrastructure/persistence/milvus"
	"novel-assistant-api/internal/infrastructure/persistence/postgres"
	"novel-assistant-api/internal/infrastructure/persistence/redis"
)

const readinessTimeout = 2 * time.Second

// Probe 可探活的依赖
type Probe interface {
	HealthCheck(ctx context.Context) error
}

type dependency struct {
	name     string
	probe    Probe
	required bool
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version string
	deps    []dependency
}

// NewHealthHandler 创建健康检查处理器；Milvus 仅在作为向量后端时必需
func NewHealthHandler(cfg *config.Config, pg *postgres.Client, redisClient *redis.Client, milvusClient *milvus.Client) *HealthHandler {
	h := &HealthHandler{version: cfg.App.Version}
	h.add("postgres", true, pg != nil, pg)
	h.add("redis", true, redisClient != nil, redisClient)
	h.add("milvus", cfg.Vector.Backend == config.VectorBackendMilvus, milvusClient != nil, milvusClient)
	return h
}

func (h *HealthHandler) add(name string, required, present bool, p Probe) {
	if !present {
		p = nil
	}
	h.deps = append(h.deps, dependency{name: name, probe: p, required: required})
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready 就绪检查接口；必需依赖异常返回 503，可选依赖只标记 degraded
// @Summary 就绪检查
// @Description 检查服务是否可以接收流量
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	ready := true
	checks := make(map[string]*readinessCheck, len(h.deps))
	for _, d := range h.deps {
		check := probe(ctx, d)
		checks[d.name] = check
		if d.required && check.Status != "ok" {
			ready = false
		}
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func probe(ctx context.Context, d dependency) *readinessCheck {
	if d.probe == nil {
		if d.required {
			return &readinessCheck{Status: "missing", Error: d.name + " client not configured"}
		}
		return &readinessCheck{Status: "disabled"}
	}

	start := time.Now()
	err := d.probe.HealthCheck(ctx)
	check := &readinessCheck{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		check.Status = "error"
		if !d.required {
			check.Status = "degraded"
		}
		check.Error = err.Error()
	}
	return check
}

// Live 存活检查接口
// @Summary 存活检查
// @Description 检查服务是否存活
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
