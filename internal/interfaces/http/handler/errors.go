// Package handler 提供 HTTP 请求处理器
package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/interfaces/http/dto"
	"novel-assistant-api/pkg/errors"
	"novel-assistant-api/pkg/logger"
)

// respondGenerationError 生成类错误映射：
// 模型配置问题 400，无候选 503，业务错误按 AppError，其余视为上游失败 502
func respondGenerationError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	if stderrors.Is(err, modelrouter.ErrModelUnavailable) {
		status, code := http.StatusBadRequest, errors.CodeModelUnavailable
		if modelrouter.ReasonOf(err) == modelrouter.ReasonNoCandidates {
			status, code = http.StatusServiceUnavailable, errors.CodeServiceUnavailable
		}
		dto.ErrorWithDetail(c, status, err.Error(), &dto.ErrorDetail{ErrorCode: string(code)})
		return
	}

	if errors.IsAppError(err) {
		dto.AppError(c, err)
		return
	}

	logger.Error(ctx, "generation failed", err)
	dto.AppError(c, errors.ErrGenerationFailed.WithDetail(err.Error()).WithError(err))
}

// storeError 唯一约束冲突返回 409，其余按数据库错误 500
func storeError(err error, message string) error {
	if stderrors.Is(err, repository.ErrDuplicate) {
		return errors.ErrConflict.WithDetail(message).WithError(err)
	}
	return errors.Wrap(err, errors.CodeDatabaseError, message)
}

// indexBestEffort 索引失败只记录日志，不影响请求结果
func indexBestEffort(c *gin.Context, indexer retrieval.Indexer, job retrieval.IndexJob) {
	if indexer == nil {
		return
	}
	ctx := c.Request.Context()
	if err := indexer.Index(ctx, job); err != nil {
		logger.Warn(ctx, "failed to index content",
			"ref_type", job.RefType,
			"ref_id", job.RefID,
			"project_id", job.ProjectID,
			"error", err.Error(),
		)
	}
}
