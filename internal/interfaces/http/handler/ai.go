package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/application/story"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/interfaces/http/dto"
	"novel-assistant-api/pkg/errors"
	"novel-assistant-api/pkg/logger"
)

const actionSuggest = "suggest"

// RelatedSearcher 项目内相似片段检索
type RelatedSearcher interface {
	SearchRelatedText(ctx context.Context, projectID int64, query string, topK int) ([]retrieval.Hit, error)
}

// ModelCatalog 已注册模型目录
type ModelCatalog interface {
	Specs() []modelrouter.ModelSpec
}

// AIHandler 生成、检索与章节级 AI 操作
type AIHandler struct {
	projectRepo repository.ProjectRepository
	chapterRepo repository.ChapterRepository
	assistant   *story.Assistant
	searcher    RelatedSearcher
	catalog     ModelCatalog
}

// NewAIHandler 创建 AI 处理器
func NewAIHandler(
	projectRepo repository.ProjectRepository,
	chapterRepo repository.ChapterRepository,
	assistant *story.Assistant,
	searcher RelatedSearcher,
	catalog ModelCatalog,
) *AIHandler {
	return &AIHandler{
		projectRepo: projectRepo,
		chapterRepo: chapterRepo,
		assistant:   assistant,
		searcher:    searcher,
		catalog:     catalog,
	}
}

// Generate 自由生成
// @Summary 自由生成
// @Description 按任务、策略与偏好选择模型；compare_models 非空时并发对比
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.GenerateRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/ai/generate [post]
func (h *AIHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		dto.BadRequest(c, "prompt is required")
		return
	}

	resp, err := h.assistant.Generate(ctx, req.ToGenerateInput())
	if err != nil {
		respondGenerationError(c, err)
		return
	}

	dto.Success(c, dto.GenerateResponse{GeneratedText: resp.Render(req.ReturnMeta)})
}

// ListModels 已注册模型
// @Summary 模型列表
// @Tags AI
// @Produce json
// @Success 200 {object} dto.Response[[]modelrouter.ModelSpec]
// @Router /v1/ai/models [get]
func (h *AIHandler) ListModels(c *gin.Context) {
	dto.Success(c, h.catalog.Specs())
}

// Search 项目内语义检索
// @Summary 语义检索
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "检索请求"
// @Success 200 {object} dto.Response[[]dto.SearchItem]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/ai/search [post]
func (h *AIHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.TopK == 0 {
		req.TopK = retrieval.DefaultTopK
	}

	hits, err := h.searcher.SearchRelatedText(ctx, req.ProjectID, req.Query, req.TopK)
	if err != nil {
		logger.Error(ctx, "failed to search related text", err, "project_id", req.ProjectID)
		dto.AppError(c, errors.ErrRetrievalFailed.WithError(err))
		return
	}

	dto.Success(c, dto.ToSearchItems(hits))
}

// ChapterAction 章节扩写、改写、起草、润色与剧情建议
// @Summary 章节 AI 操作
// @Tags AI
// @Accept json
// @Produce json
// @Param cid path int true "章节 ID"
// @Param action path string true "expand | rewrite | draft | polish | suggest"
// @Param body body dto.GenerateRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid}/ai/{action} [post]
func (h *AIHandler) ChapterAction(c *gin.Context) {
	ctx := c.Request.Context()

	name := c.Param("action")
	action, known := story.ParseChapterAction(name)
	if !known && name != actionSuggest {
		dto.AppError(c, errors.ErrNotFound.WithDetail("unknown chapter action: "+name))
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter, ok := loadChapter(c, h.chapterRepo)
	if !ok {
		return
	}

	var (
		resp *modelrouter.Response
		err  error
	)
	if known {
		resp, err = h.assistant.RunChapterAction(ctx, chapter, action, req.ToGenerateInput())
	} else {
		resp, err = h.assistant.SuggestPlot(ctx, chapter, req.ToGenerateInput())
	}
	if err != nil {
		respondGenerationError(c, err)
		return
	}

	dto.Success(c, dto.GenerateResponse{GeneratedText: resp.Render(req.ReturnMeta)})
}

// AnalyzeChapter 分析章节：出场角色、新设定、可能的伏笔，并写回项目
// @Summary 章节分析
// @Tags AI
// @Produce json
// @Param cid path int true "章节 ID"
// @Success 200 {object} dto.Response[dto.AnalyzeChapterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid}/analyze [post]
func (h *AIHandler) AnalyzeChapter(c *gin.Context) {
	ctx := c.Request.Context()

	chapter, ok := loadChapter(c, h.chapterRepo)
	if !ok {
		return
	}

	result, err := h.assistant.AnalyzeChapter(ctx, chapter)
	if err != nil {
		respondGenerationError(c, err)
		return
	}

	dto.Success(c, dto.ToAnalyzeChapterResponse(result))
}

// WorldSkeleton 世界观骨架
// @Summary 世界观骨架
// @Tags AI
// @Accept json
// @Produce json
// @Param pid path int true "项目 ID"
// @Param body body dto.WorldSkeletonRequest true "题材与设想"
// @Success 200 {object} dto.Response[dto.GenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/ai/world-skeleton [post]
func (h *AIHandler) WorldSkeleton(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.WorldSkeletonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if _, ok := loadProject(c, h.projectRepo); !ok {
		return
	}

	resp, err := h.assistant.WorldSkeleton(ctx, req.Genre, req.Idea, req.ToGenerateInput())
	if err != nil {
		respondGenerationError(c, err)
		return
	}

	dto.Success(c, dto.GenerateResponse{GeneratedText: resp.Render(req.ReturnMeta)})
}
