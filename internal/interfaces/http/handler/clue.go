package handler

import (
	"github.com/gin-gonic/gin"

	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/interfaces/http/dto"
	"novel-assistant-api/pkg/errors"
	"novel-assistant-api/pkg/logger"
)

const msgClueResolution = "resolved_chapter_id requires status resolved"

// ClueHandler 伏笔处理器
type ClueHandler struct {
	projectRepo repository.ProjectRepository
	clueRepo    repository.ClueRepository
}

// NewClueHandler 创建伏笔处理器
func NewClueHandler(projectRepo repository.ProjectRepository, clueRepo repository.ClueRepository) *ClueHandler {
	return &ClueHandler{
		projectRepo: projectRepo,
		clueRepo:    clueRepo,
	}
}

// ListClues 获取伏笔列表
// @Summary 获取伏笔列表
// @Description status 取 unresolved 或 resolved 时过滤，其他取值忽略
// @Tags Clues
// @Produce json
// @Param pid path int true "项目 ID"
// @Param status query string false "状态过滤"
// @Success 200 {object} dto.Response[[]dto.ClueResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/clues [get]
func (h *ClueHandler) ListClues(c *gin.Context) {
	ctx := c.Request.Context()

	project, ok := loadProject(c, h.projectRepo)
	if !ok {
		return
	}

	status := entity.ClueStatus(c.Query("status"))
	if !status.Valid() {
		status = ""
	}

	clues, err := h.clueRepo.ListByProject(ctx, project.ID, status)
	if err != nil {
		logger.Error(ctx, "failed to list clues", err)
		dto.AppError(c, storeError(err, "failed to list clues"))
		return
	}

	dto.Success(c, dto.ToClueListResponse(clues))
}

// CreateClue 创建伏笔
// @Summary 创建伏笔
// @Tags Clues
// @Accept json
// @Produce json
// @Param pid path int true "项目 ID"
// @Param body body dto.CreateClueRequest true "伏笔信息"
// @Success 201 {object} dto.Response[dto.ClueResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/clues [post]
func (h *ClueHandler) CreateClue(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateClueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, ok := loadProject(c, h.projectRepo)
	if !ok {
		return
	}

	clue := req.ToClueEntity(project.ID)
	if !clue.ResolutionConsistent() {
		dto.AppError(c, errors.ErrValidationFailed.WithDetail(msgClueResolution))
		return
	}

	if err := h.clueRepo.Create(ctx, clue); err != nil {
		logger.Error(ctx, "failed to create clue", err)
		dto.AppError(c, storeError(err, "failed to create clue"))
		return
	}

	dto.Created(c, dto.ToClueResponse(clue))
}

// UpdateClue 更新伏笔
// @Summary 更新伏笔
// @Tags Clues
// @Accept json
// @Produce json
// @Param id path int true "伏笔 ID"
// @Param body body dto.UpdateClueRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.ClueResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/clues/{id} [put]
func (h *ClueHandler) UpdateClue(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateClueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	clue, ok := loadClue(c, h.clueRepo)
	if !ok {
		return
	}

	req.ApplyTo(clue)
	if !clue.ResolutionConsistent() {
		dto.AppError(c, errors.ErrValidationFailed.WithDetail(msgClueResolution))
		return
	}

	if err := h.clueRepo.Update(ctx, clue); err != nil {
		logger.Error(ctx, "failed to update clue", err)
		dto.AppError(c, storeError(err, "failed to update clue"))
		return
	}

	dto.Success(c, dto.ToClueResponse(clue))
}

// DeleteClue 删除伏笔
// @Summary 删除伏笔
// @Tags Clues
// @Param id path int true "伏笔 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/clues/{id} [delete]
func (h *ClueHandler) DeleteClue(c *gin.Context) {
	ctx := c.Request.Context()

	clue, ok := loadClue(c, h.clueRepo)
	if !ok {
		return
	}

	if err := h.clueRepo.Delete(ctx, clue.ID); err != nil {
		logger.Error(ctx, "failed to delete clue", err)
		dto.AppError(c, storeError(err, "failed to delete clue"))
		return
	}

	dto.NoContent(c)
}
