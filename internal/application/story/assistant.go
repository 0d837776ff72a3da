// Package story 提供写作助手：生成、章节 AI 操作、角色完善与章节分析
package story

import (
	"context"

	"go.opentelemetry.io/otel"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/workflow/prompt"
)

var tracer = otel.Tracer("story")

// Generator 模型路由的最小依赖
type Generator interface {
	Generate(ctx context.Context, req modelrouter.Request) (*modelrouter.Response, error)
	GenerateText(ctx context.Context, req modelrouter.Request) (string, error)
}

// PromptRenderer 渲染内嵌提示词模板
type PromptRenderer interface {
	Render(ctx context.Context, id prompt.PromptID, vars map[string]any) (string, error)
}

// ContextSearcher 检索相关片段
type ContextSearcher interface {
	QuerySimilar(ctx context.Context, projectID int64, query string, topK int) ([]retrieval.Hit, error)
}

// Repositories 助手读写的仓储集合
type Repositories struct {
	Chapters      repository.ChapterRepository
	Characters    repository.CharacterRepository
	WorldElements repository.WorldElementRepository
	Clues         repository.ClueRepository
}

// Assistant 写作助手
type Assistant struct {
	router   Generator
	prompts  PromptRenderer
	searcher ContextSearcher
	indexer  retrieval.Indexer
	repos    Repositories
}

// NewAssistant 创建写作助手
func NewAssistant(router Generator, prompts PromptRenderer, searcher ContextSearcher, indexer retrieval.Indexer, repos Repositories) *Assistant {
	return &Assistant{
		router:   router,
		prompts:  prompts,
		searcher: searcher,
		indexer:  indexer,
		repos:    repos,
	}
}
