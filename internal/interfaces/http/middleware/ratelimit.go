// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"novel-assistant-api/internal/infrastructure/persistence/redis"
	"novel-assistant-api/pkg/errors"
	"novel-assistant-api/pkg/logger"
)

const (
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool
	// Scope 区分不同路由组的计数，如 api、ai
	Scope  string
	Limit  int
	Window time.Duration
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// RateLimit 按客户端 IP 的滑动窗口限流中间件，限流器故障时放行
func RateLimit(cfg RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil || cfg.Limit <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Scope == "" {
		cfg.Scope = "api"
	}
	limit := strconv.Itoa(cfg.Limit)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := redis.BuildRateLimitKey(cfg.Scope, c.ClientIP())

		allowed, err := limiter.Allow(ctx, key, cfg.Limit, cfg.Window)
		if err != nil {
			logger.Warn(ctx, "rate limiter unavailable", "scope", cfg.Scope, "error", err.Error())
			c.Next()
			return
		}

		c.Header(RateLimitLimitHeader, limit)
		if !allowed {
			c.Header(RateLimitRemainingHeader, "0")
			rejected := errors.ErrTooManyRequests
			c.AbortWithStatusJSON(rejected.HTTPStatus, gin.H{
				"code":     rejected.HTTPStatus,
				"message":  rejected.Message,
				"error":    gin.H{"error_code": rejected.Code, "details": cfg.Scope},
				"trace_id": c.GetString("trace_id"),
			})
			return
		}

		if remaining, err := limiter.Remaining(ctx, key, cfg.Limit, cfg.Window); err == nil {
			c.Header(RateLimitRemainingHeader, strconv.Itoa(remaining))
		}

		c.Next()
	}
}
