package middleware

import (
	"github.com/gin-gonic/gin"

	"novel-assistant-api/pkg/logger"
)

// ProjectContext 把路径中的项目 ID 写入日志上下文
func ProjectContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if pid := c.Param("pid"); pid != "" {
			ctx := logger.WithContext(c.Request.Context(), logger.ProjectIDKey, pid)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
