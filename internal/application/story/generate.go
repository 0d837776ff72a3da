package story

import (
	"context"
	"strings"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/domain/service"
)

// GenerateInput 一次生成请求，字段与 /ai/generate 请求体一致
type GenerateInput struct {
	Prompt          string
	Task            string
	Strategy        string
	PreferredModels []string
	CompareModels   []string
	AllowFallback   bool
	Mode            string
	SystemPrompt    string
	Model           string
	Temperature     *float32
	MaxTokens       int
	Role            string
	Persona         string
	Tone            string

	// WithContext 为 true 时章节操作会前置检索到的相关片段
	WithContext bool
	ContextTopK int
}

// MergePersonaTone 把作者人设与语气追加到系统提示末尾
func MergePersonaTone(system, persona, tone string) string {
	var parts []string
	if persona != "" {
		parts = append(parts, "Author persona: "+persona+".")
	}
	if tone != "" {
		parts = append(parts, "Tone: "+tone+".")
	}
	if len(parts) == 0 {
		return system
	}
	return strings.TrimSpace(system + " " + strings.Join(parts, " "))
}

func (in GenerateInput) request() modelrouter.Request {
	return modelrouter.Request{
		Prompt:          in.Prompt,
		Task:            in.Task,
		Strategy:        in.Strategy,
		PreferredModels: in.PreferredModels,
		CompareModels:   in.CompareModels,
		AllowFallback:   in.AllowFallback,
		Mode:            in.Mode,
		SystemPrompt:    MergePersonaTone(in.SystemPrompt, in.Persona, in.Tone),
		Model:           in.Model,
		Temperature:     in.Temperature,
		MaxTokens:       in.MaxTokens,
		Role:            in.Role,
	}
}

// Generate 自由生成
func (a *Assistant) Generate(ctx context.Context, in GenerateInput) (*modelrouter.Response, error) {
	ctx, span := tracer.Start(ctx, "story.Generate")
	defer span.End()

	ctx = service.WithOperation(ctx, operationOf(in.Mode, "generate"))
	return a.router.Generate(ctx, in.request())
}

func operationOf(mode, def string) string {
	if mode != "" {
		return mode
	}
	return def
}
