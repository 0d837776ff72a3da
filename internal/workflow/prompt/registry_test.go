package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRender(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	tests := []struct {
		name     string
		id       PromptID
		vars     map[string]any
		contains []string
	}{
		{
			name: "analysis keeps literal braces",
			id:   PromptChapterAnalysisV1,
			vars: map[string]any{
				"character_brief": "林舟 (主角): 少年剑客",
				"world_brief":     "None",
				"chapter_content": "雨夜，林舟推门而入。",
			},
			contains: []string{"{\n  \"characters_appeared\"", "林舟 (主角): 少年剑客", "已知世界观：\nNone", "雨夜，林舟推门而入。"},
		},
		{
			name:     "plot suggest",
			id:       PromptPlotSuggestV1,
			vars:     map[string]any{"chapter_content": "第一章"},
			contains: []string{"当前章节内容：\n第一章", "3 条"},
		},
		{
			name:     "world skeleton",
			id:       PromptWorldSkeletonV1,
			vars:     map[string]any{"genre": "仙侠", "idea": "灵气复苏"},
			contains: []string{"题材：仙侠", "设想：灵气复苏"},
		},
		{
			name:     "character extract",
			id:       PromptCharacterExtractV1,
			vars:     map[string]any{"chapter_content": "阿青与白猿"},
			contains: []string{"每行一个名字", "阿青与白猿"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(ctx, tt.id, tt.vars)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestRegistryCachesTemplates(t *testing.T) {
	r := NewRegistry()
	a, err := r.ChatTemplate(PromptPlotSuggestV1)
	require.NoError(t, err)
	b, err := r.ChatTemplate(PromptPlotSuggestV1)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestRegistryUnknownPrompt(t *testing.T) {
	_, err := NewRegistry().Render(context.Background(), PromptID("nope"), nil)
	assert.Error(t, err)
}
