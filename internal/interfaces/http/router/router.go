// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/interfaces/http/handler"
	"novel-assistant-api/internal/interfaces/http/middleware"
)

const (
	scopeAPI = "api"
	scopeAI  = "ai"
)

// Handlers 路由用到的全部处理器
type Handlers struct {
	Health       *handler.HealthHandler
	Project      *handler.ProjectHandler
	Volume       *handler.VolumeHandler
	Chapter      *handler.ChapterHandler
	Character    *handler.CharacterHandler
	WorldElement *handler.WorldElementHandler
	Clue         *handler.ClueHandler
	AI           *handler.AIHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  middleware.RateLimiter
}

// New 创建路由器；limiter 为 nil 时不限流
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) systemPaths() []string {
	return []string{"/health", "/ready", "/live", r.cfg.Observability.Metrics.Path}
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name, r.systemPaths()...))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.systemPaths()...))
	}
}

func (r *Router) rateLimit(scope string, limit int) gin.HandlerFunc {
	rl := r.cfg.Security.RateLimit
	return middleware.RateLimit(middleware.RateLimitConfig{
		Enabled: rl.Enabled,
		Scope:   scope,
		Limit:   limit,
		Window:  rl.Window,
	}, r.limiter)
}

func (r *Router) setupRoutes() {
	health := r.handlers.Health
	r.engine.GET("/health", health.Health)
	r.engine.GET("/ready", health.Ready)
	r.engine.GET("/live", health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	v1.Use(r.rateLimit(scopeAPI, r.cfg.Security.RateLimit.Limit))
	v1.Use(middleware.ProjectContext())

	RegisterV1Routes(v1, r.handlers, r.rateLimit(scopeAI, r.cfg.Security.RateLimit.AILimit))
}
