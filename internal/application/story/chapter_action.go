package story

import (
	"context"
	"fmt"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/service"
	"novel-assistant-api/internal/workflow/node"
	"novel-assistant-api/internal/workflow/prompt"
	"novel-assistant-api/pkg/logger"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

// ChapterAction 章节级 AI 操作
type ChapterAction string

const (
	ActionExpand  ChapterAction = "expand"
	ActionRewrite ChapterAction = "rewrite"
	ActionDraft   ChapterAction = "draft"
	ActionPolish  ChapterAction = "polish"
)

// ParseChapterAction 解析路由中的操作名
func ParseChapterAction(s string) (ChapterAction, bool) {
	switch a := ChapterAction(s); a {
	case ActionExpand, ActionRewrite, ActionDraft, ActionPolish:
		return a, true
	default:
		return "", false
	}
}

const (
	contextMaxRunes   = 2000
	contextQueryRunes = 500

	taskQuality = "quality"
	taskWorld   = "world"

	modeSuggest       = "suggest"
	modeWorldSkeleton = "world_skeleton"
	modeImprove       = "character_improve"

	rolePlotCoach       = "plot_coach"
	roleWorldConsultant = "world_consultant"
)

// ChapterPrompt 章节有正文时把正文放在用户提示之前
func ChapterPrompt(content, userPrompt string) string {
	if content == "" {
		return userPrompt
	}
	return "Existing content:\n" + content + "\n\nUser prompt:\n" + userPrompt
}

// RunChapterAction 执行扩写、改写、起草、润色，mode 固定为操作名
func (a *Assistant) RunChapterAction(ctx context.Context, chapter *entity.Chapter, action ChapterAction, in GenerateInput) (*modelrouter.Response, error) {
	ctx, span := tracer.Start(ctx, "story.RunChapterAction")
	defer span.End()

	in.Mode = string(action)
	in.Prompt = ChapterPrompt(chapter.Text(), in.Prompt)
	if in.WithContext {
		in.Prompt = a.withRelatedContext(ctx, chapter, in)
	}

	ctx = service.WithOperation(ctx, string(action))
	resp, err := a.router.Generate(ctx, in.request())
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// withRelatedContext 检索失败只记录日志，不影响生成
func (a *Assistant) withRelatedContext(ctx context.Context, chapter *entity.Chapter, in GenerateInput) string {
	if a.searcher == nil {
		return in.Prompt
	}
	query := in.Prompt
	if chapter.HasContent() {
		query = node.TruncateByRunes(chapter.Text(), contextQueryRunes)
	}
	hits, err := a.searcher.QuerySimilar(ctx, chapter.ProjectID, query, in.ContextTopK)
	if err != nil {
		logger.Warn(ctx, "related context lookup failed", "chapter_id", chapter.ID, "error", err.Error())
		return in.Prompt
	}
	hits = excludeRef(hits, retrieval.RefTypeChapter, chapter.ID)
	block := retrieval.BuildContext(hits, contextMaxRunes)
	if block == "" {
		return in.Prompt
	}
	return block + "\n\n" + in.Prompt
}

func excludeRef(hits []retrieval.Hit, refType string, refID int64) []retrieval.Hit {
	out := hits[:0:0]
	for _, h := range hits {
		if h.RefType == refType && h.RefID == refID {
			continue
		}
		out = append(out, h)
	}
	return out
}

// SuggestPlot 针对章节给出后续剧情建议
func (a *Assistant) SuggestPlot(ctx context.Context, chapter *entity.Chapter, in GenerateInput) (*modelrouter.Response, error) {
	ctx, span := tracer.Start(ctx, "story.SuggestPlot")
	defer span.End()

	text, err := a.prompts.Render(ctx, prompt.PromptPlotSuggestV1, map[string]any{
		"chapter_content": chapter.Text(),
	})
	if err != nil {
		return nil, err
	}

	in.Prompt = text
	in.Mode = modeSuggest
	if in.Task == "" {
		in.Task = taskQuality
	}
	if in.Role == "" {
		in.Role = rolePlotCoach
	}
	return a.router.Generate(service.WithOperation(ctx, modeSuggest), in.request())
}

// WorldSkeleton 按题材与设想生成世界观骨架
func (a *Assistant) WorldSkeleton(ctx context.Context, genre, idea string, in GenerateInput) (*modelrouter.Response, error) {
	ctx, span := tracer.Start(ctx, "story.WorldSkeleton")
	defer span.End()

	text, err := a.prompts.Render(ctx, prompt.PromptWorldSkeletonV1, map[string]any{
		"genre": genre,
		"idea":  idea,
	})
	if err != nil {
		return nil, err
	}

	in.Prompt = text
	in.Mode = modeWorldSkeleton
	if in.Task == "" {
		in.Task = taskWorld
	}
	if in.Role == "" {
		in.Role = roleWorldConsultant
	}
	return a.router.Generate(service.WithOperation(ctx, modeWorldSkeleton), in.request())
}

// CharacterPrompt 角色卡片与用户请求
func CharacterPrompt(c *entity.Character, userPrompt string) string {
	base := fmt.Sprintf("Character: %s\nRole: %s\nSnapshot: %s\nArc: %s\n",
		c.Name, deref(c.Role), c.DescriptionText(), deref(c.Arc))
	return base + "\n\nUser request: " + userPrompt
}

// ImproveCharacter 完善角色设定
func (a *Assistant) ImproveCharacter(ctx context.Context, character *entity.Character, in GenerateInput) (*modelrouter.Response, error) {
	ctx, span := tracer.Start(ctx, "story.ImproveCharacter")
	defer span.End()

	in.Prompt = CharacterPrompt(character, in.Prompt)
	if in.Mode == "" {
		in.Mode = modeImprove
	}
	return a.router.Generate(service.WithOperation(ctx, in.Mode), in.request())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
