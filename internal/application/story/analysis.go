package story

import (
	"context"
	"strings"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/service"
	"novel-assistant-api/internal/workflow/node"
	"novel-assistant-api/internal/workflow/prompt"
	apperrors "novel-assistant-api/pkg/errors"
	"novel-assistant-api/pkg/logger"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

const (
	modeAnalyze           = "analyze_chapter"
	modeExtractCharacters = "extract_characters"

	factTitleRunes = 50
)

// ChapterAnalysis 章节分析结果
type ChapterAnalysis struct {
	CharactersAppeared []string `json:"characters_appeared"`
	WorldFacts         []string `json:"world_facts"`
	PossibleClues      []string `json:"possible_clues"`
}

// AnalysisFromJSON 缺失字段按空列表处理
func AnalysisFromJSON(obj map[string]any) ChapterAnalysis {
	return ChapterAnalysis{
		CharactersAppeared: node.StringList(obj, "characters_appeared"),
		WorldFacts:         node.StringList(obj, "world_facts"),
		PossibleClues:      node.StringList(obj, "possible_clues"),
	}
}

// AnalyzeChapter 分析章节并写回出场角色、设定条目与伏笔，写回失败仅记录日志
func (a *Assistant) AnalyzeChapter(ctx context.Context, chapter *entity.Chapter) (*ChapterAnalysis, error) {
	ctx, span := tracer.Start(ctx, "story.AnalyzeChapter")
	defer span.End()

	if !chapter.HasContent() {
		return nil, apperrors.ErrEmptyContent
	}

	characters, err := a.repos.Characters.ListByProject(ctx, chapter.ProjectID)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, err
	}
	elements, err := a.repos.WorldElements.ListByProject(ctx, chapter.ProjectID)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, err
	}

	text, err := a.prompts.Render(ctx, prompt.PromptChapterAnalysisV1, map[string]any{
		"character_brief": node.BuildCharacterBrief(characters),
		"world_brief":     node.BuildWorldBrief(elements),
		"chapter_content": chapter.Text(),
	})
	if err != nil {
		return nil, err
	}

	raw, err := a.router.GenerateText(service.WithOperation(ctx, modeAnalyze), modelrouter.Request{
		Prompt:        text,
		Mode:          modeAnalyze,
		Role:          roleWorldConsultant,
		Temperature:   modelrouter.Temperature(0),
		AllowFallback: true,
	})
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, err
	}

	result := AnalysisFromJSON(node.ParseJSONObject(raw))

	if err := a.SyncChapterCharacters(ctx, chapter, result.CharactersAppeared); err != nil {
		logger.Warn(ctx, "failed to sync chapter characters", "chapter_id", chapter.ID, "error", err.Error())
	}
	if err := a.addWorldFacts(ctx, chapter.ProjectID, result.WorldFacts); err != nil {
		logger.Warn(ctx, "failed to add world facts", "chapter_id", chapter.ID, "error", err.Error())
	}
	if err := a.addClues(ctx, chapter, result.PossibleClues); err != nil {
		logger.Warn(ctx, "failed to add clues", "chapter_id", chapter.ID, "error", err.Error())
	}

	return &result, nil
}

// addWorldFacts 新设定以前 50 字为标题写入，已有同名标题跳过
func (a *Assistant) addWorldFacts(ctx context.Context, projectID int64, facts []string) error {
	for _, fact := range facts {
		fact = strings.TrimSpace(fact)
		if fact == "" {
			continue
		}
		title := node.TruncateByRunes(fact, factTitleRunes)
		exists, err := a.repos.WorldElements.ExistsByTitle(ctx, projectID, title)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		content := fact
		element := &entity.WorldElement{
			ProjectID: projectID,
			Type:      entity.WorldElementTypeFact,
			Title:     title,
			Content:   &content,
		}
		if err := a.repos.WorldElements.Create(ctx, element); err != nil {
			return err
		}
		a.index(ctx, retrieval.IndexJob{
			ProjectID: projectID,
			RefType:   retrieval.RefTypeWorld,
			RefID:     element.ID,
			Content:   content,
		})
	}
	return nil
}

func (a *Assistant) addClues(ctx context.Context, chapter *entity.Chapter, descriptions []string) error {
	clues := make([]*entity.Clue, 0, len(descriptions))
	for _, d := range descriptions {
		if d = strings.TrimSpace(d); d != "" {
			clues = append(clues, entity.NewUnresolvedClue(chapter.ProjectID, chapter.ID, d))
		}
	}
	return a.repos.Clues.CreateBatch(ctx, clues)
}

// index 写入失败只记录日志
func (a *Assistant) index(ctx context.Context, job retrieval.IndexJob) {
	if a.indexer == nil {
		return
	}
	if err := a.indexer.Index(ctx, job); err != nil {
		logger.Warn(ctx, "failed to index content",
			"ref_type", job.RefType,
			"ref_id", job.RefID,
			"error", err.Error(),
		)
	}
}
