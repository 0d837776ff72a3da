package handler

import (
	"github.com/gin-gonic/gin"

	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/interfaces/http/dto"
	"novel-assistant-api/pkg/logger"
)

// WorldElementHandler 世界观设定处理器
type WorldElementHandler struct {
	projectRepo repository.ProjectRepository
	worldRepo   repository.WorldElementRepository
	indexer     retrieval.Indexer
}

// NewWorldElementHandler 创建世界观设定处理器
func NewWorldElementHandler(
	projectRepo repository.ProjectRepository,
	worldRepo repository.WorldElementRepository,
	indexer retrieval.Indexer,
) *WorldElementHandler {
	return &WorldElementHandler{
		projectRepo: projectRepo,
		worldRepo:   worldRepo,
		indexer:     indexer,
	}
}

func (h *WorldElementHandler) index(c *gin.Context, w *entity.WorldElement, content string) {
	indexBestEffort(c, h.indexer, retrieval.IndexJob{
		ProjectID: w.ProjectID,
		RefType:   retrieval.RefTypeWorld,
		RefID:     w.ID,
		Content:   content,
	})
}

// ListWorldElements 获取设定列表
// @Summary 获取设定列表
// @Tags WorldElements
// @Produce json
// @Param pid path int true "项目 ID"
// @Success 200 {object} dto.Response[[]dto.WorldElementResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/world-elements [get]
func (h *WorldElementHandler) ListWorldElements(c *gin.Context) {
	ctx := c.Request.Context()

	project, ok := loadProject(c, h.projectRepo)
	if !ok {
		return
	}

	items, err := h.worldRepo.ListByProject(ctx, project.ID)
	if err != nil {
		logger.Error(ctx, "failed to list world elements", err)
		dto.AppError(c, storeError(err, "failed to list world elements"))
		return
	}

	dto.Success(c, dto.ToWorldElementListResponse(items))
}

// CreateWorldElement 创建设定
// @Summary 创建设定
// @Tags WorldElements
// @Accept json
// @Produce json
// @Param pid path int true "项目 ID"
// @Param body body dto.CreateWorldElementRequest true "设定信息"
// @Success 201 {object} dto.Response[dto.WorldElementResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/world-elements [post]
func (h *WorldElementHandler) CreateWorldElement(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateWorldElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, ok := loadProject(c, h.projectRepo)
	if !ok {
		return
	}

	element := req.ToWorldElementEntity(project.ID)
	if err := h.worldRepo.Create(ctx, element); err != nil {
		logger.Error(ctx, "failed to create world element", err)
		dto.AppError(c, storeError(err, "failed to create world element"))
		return
	}

	h.index(c, element, element.ContentText())
	dto.Created(c, dto.ToWorldElementResponse(element))
}

// UpdateWorldElement 更新设定
// @Summary 更新设定
// @Tags WorldElements
// @Accept json
// @Produce json
// @Param id path int true "设定 ID"
// @Param body body dto.UpdateWorldElementRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.WorldElementResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/world-elements/{id} [put]
func (h *WorldElementHandler) UpdateWorldElement(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateWorldElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	element, ok := loadWorldElement(c, h.worldRepo)
	if !ok {
		return
	}

	req.ApplyTo(element)
	if err := h.worldRepo.Update(ctx, element); err != nil {
		logger.Error(ctx, "failed to update world element", err)
		dto.AppError(c, storeError(err, "failed to update world element"))
		return
	}

	h.index(c, element, element.ContentText())
	dto.Success(c, dto.ToWorldElementResponse(element))
}

// DeleteWorldElement 删除设定
// @Summary 删除设定
// @Tags WorldElements
// @Param id path int true "设定 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/world-elements/{id} [delete]
func (h *WorldElementHandler) DeleteWorldElement(c *gin.Context) {
	ctx := c.Request.Context()

	element, ok := loadWorldElement(c, h.worldRepo)
	if !ok {
		return
	}

	h.index(c, element, "")
	if err := h.worldRepo.Delete(ctx, element.ID); err != nil {
		logger.Error(ctx, "failed to delete world element", err)
		dto.AppError(c, storeError(err, "failed to delete world element"))
		return
	}

	dto.NoContent(c)
}
