package handler

import (
	"github.com/gin-gonic/gin"

	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/interfaces/http/dto"
	"novel-assistant-api/pkg/logger"
)

// VolumeHandler 卷处理器
type VolumeHandler struct {
	projectRepo repository.ProjectRepository
	volumeRepo  repository.VolumeRepository
}

// NewVolumeHandler 创建卷处理器
func NewVolumeHandler(projectRepo repository.ProjectRepository, volumeRepo repository.VolumeRepository) *VolumeHandler {
	return &VolumeHandler{
		projectRepo: projectRepo,
		volumeRepo:  volumeRepo,
	}
}

// ListVolumes 获取卷列表
// @Summary 获取卷列表
// @Tags Volumes
// @Produce json
// @Param pid path int true "项目 ID"
// @Success 200 {object} dto.Response[[]dto.VolumeResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/volumes [get]
func (h *VolumeHandler) ListVolumes(c *gin.Context) {
	ctx := c.Request.Context()

	project, ok := loadProject(c, h.projectRepo)
	if !ok {
		return
	}

	volumes, err := h.volumeRepo.ListByProject(ctx, project.ID)
	if err != nil {
		logger.Error(ctx, "failed to list volumes", err)
		dto.AppError(c, storeError(err, "failed to list volumes"))
		return
	}

	dto.Success(c, dto.ToVolumeListResponse(volumes))
}

// CreateVolume 创建卷
// @Summary 创建卷
// @Description 未指定 index 时追加到末尾
// @Tags Volumes
// @Accept json
// @Produce json
// @Param pid path int true "项目 ID"
// @Param body body dto.CreateVolumeRequest true "卷信息"
// @Success 201 {object} dto.Response[dto.VolumeResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/volumes [post]
func (h *VolumeHandler) CreateVolume(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, ok := loadProject(c, h.projectRepo)
	if !ok {
		return
	}

	index := 0
	if req.Index != nil {
		index = *req.Index
	} else {
		next, err := h.volumeRepo.NextIndex(ctx, project.ID)
		if err != nil {
			logger.Error(ctx, "failed to compute volume index", err)
			dto.AppError(c, storeError(err, "failed to create volume"))
			return
		}
		index = next
	}

	volume := entity.NewVolume(project.ID, index, req.Title)
	if err := h.volumeRepo.Create(ctx, volume); err != nil {
		logger.Error(ctx, "failed to create volume", err)
		dto.AppError(c, storeError(err, "failed to create volume"))
		return
	}

	dto.Created(c, dto.ToVolumeResponse(volume))
}

// UpdateVolume 更新卷
// @Summary 更新卷
// @Tags Volumes
// @Accept json
// @Produce json
// @Param vid path int true "卷 ID"
// @Param body body dto.UpdateVolumeRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.VolumeResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/volumes/{vid} [put]
func (h *VolumeHandler) UpdateVolume(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	volume, ok := loadVolume(c, h.volumeRepo)
	if !ok {
		return
	}

	req.ApplyTo(volume)
	if err := h.volumeRepo.Update(ctx, volume); err != nil {
		logger.Error(ctx, "failed to update volume", err)
		dto.AppError(c, storeError(err, "failed to update volume"))
		return
	}

	dto.Success(c, dto.ToVolumeResponse(volume))
}

// DeleteVolume 删除卷，所属章节保留但解除归属
// @Summary 删除卷
// @Tags Volumes
// @Param vid path int true "卷 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/volumes/{vid} [delete]
func (h *VolumeHandler) DeleteVolume(c *gin.Context) {
	ctx := c.Request.Context()

	volume, ok := loadVolume(c, h.volumeRepo)
	if !ok {
		return
	}

	if err := h.volumeRepo.Delete(ctx, volume.ID); err != nil {
		logger.Error(ctx, "failed to delete volume", err)
		dto.AppError(c, storeError(err, "failed to delete volume"))
		return
	}

	dto.NoContent(c)
}
