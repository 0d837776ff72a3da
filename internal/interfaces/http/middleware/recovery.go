package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"novel-assistant-api/pkg/errors"
	"novel-assistant-api/pkg/logger"
)

// Recovery Panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			logger.Error(c.Request.Context(), "panic recovered",
				fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			internal := errors.ErrInternalError
			c.AbortWithStatusJSON(internal.HTTPStatus, gin.H{
				"code":       internal.HTTPStatus,
				"message":    internal.Message,
				"error":      gin.H{"error_code": internal.Code},
				"request_id": c.GetString("request_id"),
				"trace_id":   c.GetString("trace_id"),
			})
		}()

		c.Next()
	}
}
