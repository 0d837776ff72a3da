package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/application/story"
	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/interfaces/http/dto"
	"novel-assistant-api/pkg/logger"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	tx          repository.Transactor
	projectRepo repository.ProjectRepository
	chapterRepo repository.ChapterRepository
	indexer     retrieval.Indexer
	assistant   *story.Assistant
	features    config.FeaturesConfig
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(
	tx repository.Transactor,
	projectRepo repository.ProjectRepository,
	chapterRepo repository.ChapterRepository,
	indexer retrieval.Indexer,
	assistant *story.Assistant,
	features config.FeaturesConfig,
) *ChapterHandler {
	return &ChapterHandler{
		tx:          tx,
		projectRepo: projectRepo,
		chapterRepo: chapterRepo,
		indexer:     indexer,
		assistant:   assistant,
		features:    features,
	}
}

// ListChapters 获取章节列表
// @Summary 获取章节列表
// @Description 按 index、ID 升序返回项目全部章节
// @Tags Chapters
// @Produce json
// @Param pid path int true "项目 ID"
// @Success 200 {object} dto.Response[[]dto.ChapterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/chapters [get]
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	ctx := c.Request.Context()

	project, ok := loadProject(c, h.projectRepo)
	if !ok {
		return
	}

	chapters, err := h.chapterRepo.ListByProject(ctx, project.ID)
	if err != nil {
		logger.Error(ctx, "failed to list chapters", err)
		dto.AppError(c, storeError(err, "failed to list chapters"))
		return
	}

	dto.Success(c, dto.ToChapterListResponse(chapters))
}

// CreateChapter 创建章节
// @Summary 创建章节
// @Description 追加到项目末尾，正文非空时写入检索索引
// @Tags Chapters
// @Accept json
// @Produce json
// @Param pid path int true "项目 ID"
// @Param body body dto.CreateChapterRequest true "章节信息"
// @Success 201 {object} dto.Response[dto.ChapterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/chapters [post]
func (h *ChapterHandler) CreateChapter(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, ok := loadProject(c, h.projectRepo)
	if !ok {
		return
	}

	var chapter *entity.Chapter
	err := h.tx.WithTransaction(ctx, func(ctx context.Context) error {
		index, err := h.chapterRepo.NextIndex(ctx, project.ID)
		if err != nil {
			return err
		}
		chapter = req.ToChapterEntity(project.ID, index)
		return h.chapterRepo.Create(ctx, chapter)
	})
	if err != nil {
		logger.Error(ctx, "failed to create chapter", err)
		dto.AppError(c, storeError(err, "failed to create chapter"))
		return
	}

	if chapter.HasContent() {
		indexBestEffort(c, h.indexer, retrieval.IndexJob{
			ProjectID: chapter.ProjectID,
			RefType:   retrieval.RefTypeChapter,
			RefID:     chapter.ID,
			Content:   chapter.Text(),
		})
	}

	dto.Created(c, dto.ToChapterResponse(chapter))
}

// GetChapter 获取章节详情
// @Summary 获取章节详情
// @Tags Chapters
// @Produce json
// @Param cid path int true "章节 ID"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid} [get]
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	chapter, ok := loadChapter(c, h.chapterRepo)
	if !ok {
		return
	}
	dto.Success(c, dto.ToChapterResponse(chapter))
}

// UpdateChapter 更新章节
// @Summary 更新章节
// @Description 重建章节索引；开启角色抽取时同步出场角色
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path int true "章节 ID"
// @Param body body dto.UpdateChapterRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid} [put]
func (h *ChapterHandler) UpdateChapter(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter, ok := loadChapter(c, h.chapterRepo)
	if !ok {
		return
	}

	req.ApplyTo(chapter)
	if err := h.chapterRepo.Update(ctx, chapter); err != nil {
		logger.Error(ctx, "failed to update chapter", err)
		dto.AppError(c, storeError(err, "failed to update chapter"))
		return
	}

	indexBestEffort(c, h.indexer, retrieval.IndexJob{
		ProjectID: chapter.ProjectID,
		RefType:   retrieval.RefTypeChapter,
		RefID:     chapter.ID,
		Content:   chapter.Text(),
	})

	if h.features.CharacterExtraction && h.assistant != nil && chapter.HasContent() {
		if err := h.assistant.RefreshChapterCharacters(ctx, chapter); err != nil {
			logger.Warn(ctx, "failed to sync chapter characters", "chapter_id", chapter.ID, "error", err.Error())
		}
	}

	dto.Success(c, dto.ToChapterResponse(chapter))
}

// DeleteChapter 删除章节并清理其检索分块
// @Summary 删除章节
// @Tags Chapters
// @Param cid path int true "章节 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid} [delete]
func (h *ChapterHandler) DeleteChapter(c *gin.Context) {
	ctx := c.Request.Context()

	chapter, ok := loadChapter(c, h.chapterRepo)
	if !ok {
		return
	}

	indexBestEffort(c, h.indexer, retrieval.IndexJob{
		ProjectID: chapter.ProjectID,
		RefType:   retrieval.RefTypeChapter,
		RefID:     chapter.ID,
	})

	if err := h.chapterRepo.Delete(ctx, chapter.ID); err != nil {
		logger.Error(ctx, "failed to delete chapter", err)
		dto.AppError(c, storeError(err, "failed to delete chapter"))
		return
	}

	dto.NoContent(c)
}

// ListChapterCharacters 章节出场角色
// @Summary 章节出场角色
// @Tags Chapters
// @Produce json
// @Param cid path int true "章节 ID"
// @Success 200 {object} dto.Response[[]dto.CharacterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid}/characters [get]
func (h *ChapterHandler) ListChapterCharacters(c *gin.Context) {
	ctx := c.Request.Context()

	chapter, ok := loadChapter(c, h.chapterRepo)
	if !ok {
		return
	}

	characters, err := h.chapterRepo.ListCharacters(ctx, chapter.ID)
	if err != nil {
		logger.Error(ctx, "failed to list chapter characters", err)
		dto.AppError(c, storeError(err, "failed to list chapter characters"))
		return
	}

	dto.Success(c, dto.ToCharacterListResponse(characters))
}
