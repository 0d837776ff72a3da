// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"novel-assistant-api/pkg/errors"
)

// PageRequest 分页请求参数
type PageRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize 规范化分页参数
func (r *PageRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
}

// BindPage 从 Gin Context 绑定分页参数
func BindPage(c *gin.Context) PageRequest {
	req := PageRequest{
		Page:     parseIntWithDefault(c.Query("page"), 1),
		PageSize: parseIntWithDefault(c.Query("page_size"), 20),
	}
	req.Normalize()
	return req
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// BindID 从 URI 读取正整数 ID，非法时写入 400 并返回 false
func BindID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		AppError(c, errors.ErrInvalidParam.WithDetail(param))
		return 0, false
	}
	return id, true
}

// BindProjectID 从 URI 绑定项目 ID
func BindProjectID(c *gin.Context) (int64, bool) {
	return BindID(c, "pid")
}

// BindChapterID 从 URI 绑定章节 ID
func BindChapterID(c *gin.Context) (int64, bool) {
	return BindID(c, "cid")
}

// BindVolumeID 从 URI 绑定卷 ID
func BindVolumeID(c *gin.Context) (int64, bool) {
	return BindID(c, "vid")
}
