// Package prompt 管理内嵌的提示词模板
package prompt

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptChapterAnalysisV1  PromptID = "chapter_analysis_v1"
	PromptPlotSuggestV1      PromptID = "plot_suggest_v1"
	PromptWorldSkeletonV1    PromptID = "world_skeleton_v1"
	PromptCharacterExtractV1 PromptID = "character_extract_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	userPath, err := resolvePromptFile(id)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(schema.FString, schema.UserMessage(user))
	r.cache[id] = tpl
	return tpl, nil
}

// Render 渲染模板为单条用户提示，变量缺失时返回错误
func (r *Registry) Render(ctx context.Context, id PromptID, vars map[string]any) (string, error) {
	tpl, err := r.ChatTemplate(id)
	if err != nil {
		return "", err
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("failed to format prompt %s: %w", id, err)
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("prompt %s rendered no messages", id)
	}
	return msgs[len(msgs)-1].Content, nil
}

func resolvePromptFile(id PromptID) (string, error) {
	switch id {
	case PromptChapterAnalysisV1, PromptPlotSuggestV1, PromptWorldSkeletonV1, PromptCharacterExtractV1:
		return "templates/" + string(id) + ".user.txt", nil
	default:
		return "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
