package handler

import (
	"github.com/gin-gonic/gin"

	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/application/story"
	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/interfaces/http/dto"
	"novel-assistant-api/pkg/logger"
)

// CharacterHandler 角色处理器
type CharacterHandler struct {
	projectRepo   repository.ProjectRepository
	characterRepo repository.CharacterRepository
	indexer       retrieval.Indexer
	assistant     *story.Assistant
}

// NewCharacterHandler 创建角色处理器
func NewCharacterHandler(
	projectRepo repository.ProjectRepository,
	characterRepo repository.CharacterRepository,
	indexer retrieval.Indexer,
	assistant *story.Assistant,
) *CharacterHandler {
	return &CharacterHandler{
		projectRepo:   projectRepo,
		characterRepo: characterRepo,
		indexer:       indexer,
		assistant:     assistant,
	}
}

func (h *CharacterHandler) index(c *gin.Context, ch *entity.Character, content string) {
	indexBestEffort(c, h.indexer, retrieval.IndexJob{
		ProjectID: ch.ProjectID,
		RefType:   retrieval.RefTypeCharacter,
		RefID:     ch.ID,
		Content:   content,
	})
}

// ListCharacters 获取角色列表
// @Summary 获取角色列表
// @Tags Characters
// @Produce json
// @Param pid path int true "项目 ID"
// @Success 200 {object} dto.Response[[]dto.CharacterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/characters [get]
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	ctx := c.Request.Context()

	project, ok := loadProject(c, h.projectRepo)
	if !ok {
		return
	}

	characters, err := h.characterRepo.ListByProject(ctx, project.ID)
	if err != nil {
		logger.Error(ctx, "failed to list characters", err)
		dto.AppError(c, storeError(err, "failed to list characters"))
		return
	}

	dto.Success(c, dto.ToCharacterListResponse(characters))
}

// CreateCharacter 创建角色，简介写入检索索引
// @Summary 创建角色
// @Tags Characters
// @Accept json
// @Produce json
// @Param pid path int true "项目 ID"
// @Param body body dto.CreateCharacterRequest true "角色信息"
// @Success 201 {object} dto.Response[dto.CharacterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/characters [post]
func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, ok := loadProject(c, h.projectRepo)
	if !ok {
		return
	}

	character := req.ToCharacterEntity(project.ID)
	if err := h.characterRepo.Create(ctx, character); err != nil {
		logger.Error(ctx, "failed to create character", err)
		dto.AppError(c, storeError(err, "failed to create character"))
		return
	}

	h.index(c, character, character.DescriptionText())
	dto.Created(c, dto.ToCharacterResponse(character))
}

// UpdateCharacter 更新角色
// @Summary 更新角色
// @Tags Characters
// @Accept json
// @Produce json
// @Param id path int true "角色 ID"
// @Param body body dto.UpdateCharacterRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.CharacterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/characters/{id} [put]
func (h *CharacterHandler) UpdateCharacter(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	character, ok := loadCharacter(c, h.characterRepo)
	if !ok {
		return
	}

	req.ApplyTo(character)
	if err := h.characterRepo.Update(ctx, character); err != nil {
		logger.Error(ctx, "failed to update character", err)
		dto.AppError(c, storeError(err, "failed to update character"))
		return
	}

	h.index(c, character, character.DescriptionText())
	dto.Success(c, dto.ToCharacterResponse(character))
}

// DeleteCharacter 删除角色
// @Summary 删除角色
// @Tags Characters
// @Param id path int true "角色 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/characters/{id} [delete]
func (h *CharacterHandler) DeleteCharacter(c *gin.Context) {
	ctx := c.Request.Context()

	character, ok := loadCharacter(c, h.characterRepo)
	if !ok {
		return
	}

	h.index(c, character, "")
	if err := h.characterRepo.Delete(ctx, character.ID); err != nil {
		logger.Error(ctx, "failed to delete character", err)
		dto.AppError(c, storeError(err, "failed to delete character"))
		return
	}

	dto.NoContent(c)
}

// ImproveCharacter AI 完善角色设定
// @Summary AI 完善角色
// @Tags Characters
// @Accept json
// @Produce json
// @Param id path int true "角色 ID"
// @Param body body dto.GenerateRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/characters/{id}/ai/improve [post]
func (h *CharacterHandler) ImproveCharacter(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	character, ok := loadCharacter(c, h.characterRepo)
	if !ok {
		return
	}

	resp, err := h.assistant.ImproveCharacter(ctx, character, req.ToGenerateInput())
	if err != nil {
		respondGenerationError(c, err)
		return
	}

	dto.Success(c, dto.GenerateResponse{GeneratedText: resp.Render(req.ReturnMeta)})
}
