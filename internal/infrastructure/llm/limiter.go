package llm

import (
	"golang.org/x/time/rate"

	"novel-assistant-api/internal/config"
)

const defaultBurst = 1

// newLimiter 按提供商配置创建客户端限流器，RPS 未配置时不限流
func newLimiter(pc config.ProviderConfig) *rate.Limiter {
	if pc.RateLimitRPS <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := pc.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	return rate.NewLimiter(rate.Limit(pc.RateLimitRPS), burst)
}
