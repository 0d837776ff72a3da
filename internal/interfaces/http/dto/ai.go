package dto

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/application/story"
	"novel-assistant-api/internal/workflow/node"
)

// SnippetRunes 检索结果摘要长度
const SnippetRunes = 200

// GenerateRequest 生成请求，章节操作与自由生成共用
type GenerateRequest struct {
	Prompt          string   `json:"prompt"`
	Task            string   `json:"task,omitempty"`
	Strategy        string   `json:"strategy,omitempty"`
	PreferredModels []string `json:"preferred_models,omitempty"`
	CompareModels   []string `json:"compare_models,omitempty"`
	// AllowFallback 缺省为 true
	AllowFallback *bool    `json:"allow_fallback,omitempty"`
	Mode          string   `json:"mode,omitempty"`
	SystemPrompt  string   `json:"system_prompt,omitempty"`
	Model         string   `json:"model,omitempty"`
	Temperature   *float32 `json:"temperature,omitempty" binding:"omitempty,gte=0,lte=2"`
	MaxTokens     *int     `json:"max_tokens,omitempty" binding:"omitempty,gt=0"`
	Role          string   `json:"role,omitempty"`
	Persona       string   `json:"persona,omitempty"`
	Tone          string   `json:"tone,omitempty"`
	WithContext   bool     `json:"with_context,omitempty"`
	ContextTopK   int      `json:"context_top_k,omitempty" binding:"omitempty,gte=0,lte=50"`
	ReturnMeta    bool     `json:"return_meta,omitempty"`
}

// ToGenerateInput 转换为应用层输入
func (r *GenerateRequest) ToGenerateInput() story.GenerateInput {
	in := story.GenerateInput{
		Prompt:          r.Prompt,
		Task:            r.Task,
		Strategy:        r.Strategy,
		PreferredModels: r.PreferredModels,
		CompareModels:   r.CompareModels,
		AllowFallback:   true,
		Mode:            r.Mode,
		SystemPrompt:    r.SystemPrompt,
		Model:           r.Model,
		Temperature:     r.Temperature,
		Role:            r.Role,
		Persona:         r.Persona,
		Tone:            r.Tone,
		WithContext:     r.WithContext,
		ContextTopK:     r.ContextTopK,
	}
	if r.AllowFallback != nil {
		in.AllowFallback = *r.AllowFallback
	}
	if r.MaxTokens != nil {
		in.MaxTokens = *r.MaxTokens
	}
	return in
}

// WorldSkeletonRequest 世界观骨架请求
type WorldSkeletonRequest struct {
	Genre string `json:"genre" binding:"required,max=100"`
	Idea  string `json:"idea" binding:"required"`
	GenerateRequest
}

// GenerateResponse 生成结果：文本、元数据或对比模式下的列表
type GenerateResponse struct {
	GeneratedText any `json:"generated_text"`
}

// AnalyzeChapterResponse 章节分析结果
type AnalyzeChapterResponse struct {
	CharactersAppeared []string `json:"characters_appeared"`
	WorldFacts         []string `json:"world_facts"`
	PossibleClues      []string `json:"possible_clues"`
}

// ToAnalyzeChapterResponse 空列表输出为 []
func ToAnalyzeChapterResponse(a *story.ChapterAnalysis) *AnalyzeChapterResponse {
	resp := &AnalyzeChapterResponse{
		CharactersAppeared: []string{},
		WorldFacts:         []string{},
		PossibleClues:      []string{},
	}
	if a == nil {
		return resp
	}
	resp.CharactersAppeared = append(resp.CharactersAppeared, a.CharactersAppeared...)
	resp.WorldFacts = append(resp.WorldFacts, a.WorldFacts...)
	resp.PossibleClues = append(resp.PossibleClues, a.PossibleClues...)
	return resp
}

// SearchRequest 项目内检索请求
type SearchRequest struct {
	ProjectID int64  `json:"project_id" binding:"required,gt=0"`
	Query     string `json:"query" binding:"required,max=5000"`
	TopK      int    `json:"top_k,omitempty" binding:"omitempty,gt=0,lte=50"`
}

// SearchItem 检索结果条目
type SearchItem struct {
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Content string  `json:"content"`
	Type    string  `json:"type"`
	RefID   int64   `json:"ref_id"`
	Score   float64 `json:"score"`
}

// ToSearchItems 命中转换为展示条目，标题形如 "Chapter #12"
func ToSearchItems(hits []retrieval.Hit) []*SearchItem {
	title := cases.Title(language.English)
	out := make([]*SearchItem, 0, len(hits))
	for _, h := range hits {
		refType := h.RefType
		if refType == "" {
			refType = retrieval.RefTypeNote
		}
		out = append(out, &SearchItem{
			Title:   fmt.Sprintf("%s #%d", title.String(refType), h.RefID),
			Snippet: node.TruncateByRunes(h.Content, SnippetRunes),
			Content: h.Content,
			Type:    refType,
			RefID:   h.RefID,
			Score:   h.Score,
		})
	}
	return out
}
