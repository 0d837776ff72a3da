package story

import (
	"context"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/service"
	"novel-assistant-api/internal/workflow/node"
	"novel-assistant-api/internal/workflow/prompt"
)

// ExtractCharacters 从正文抽取出场角色名，每行一个
func (a *Assistant) ExtractCharacters(ctx context.Context, content string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "story.ExtractCharacters")
	defer span.End()

	text, err := a.prompts.Render(ctx, prompt.PromptCharacterExtractV1, map[string]any{
		"chapter_content": content,
	})
	if err != nil {
		return nil, err
	}

	out, err := a.router.GenerateText(service.WithOperation(ctx, modeExtractCharacters), modelrouter.Request{
		Prompt:        text,
		Mode:          modeExtractCharacters,
		Role:          roleWorldConsultant,
		Temperature:   modelrouter.Temperature(0),
		AllowFallback: true,
	})
	if err != nil {
		return nil, err
	}
	return node.NonEmptyLines(out), nil
}

// SyncChapterCharacters 以名字匹配项目角色并覆盖章节出场关联，名字为空时保持原状
func (a *Assistant) SyncChapterCharacters(ctx context.Context, chapter *entity.Chapter, names []string) error {
	if len(names) == 0 {
		return nil
	}

	characters, err := a.repos.Characters.FindByNames(ctx, chapter.ProjectID, names)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(characters))
	for _, c := range characters {
		ids = append(ids, c.ID)
	}
	return a.repos.Chapters.ReplaceCharacters(ctx, chapter.ID, ids)
}

// RefreshChapterCharacters 章节正文变更后重新抽取并同步出场角色
func (a *Assistant) RefreshChapterCharacters(ctx context.Context, chapter *entity.Chapter) error {
	if !chapter.HasContent() {
		return nil
	}
	names, err := a.ExtractCharacters(ctx, chapter.Text())
	if err != nil {
		return err
	}
	return a.SyncChapterCharacters(ctx, chapter, names)
}
