package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/interfaces/http/dto"
	apperrors "novel-assistant-api/pkg/errors"
)

func TestGenerate(t *testing.T) {
	e := newEnv(config.FeaturesConfig{})

	w, body := e.do(t, http.MethodPost, "/v1/ai/generate", map[string]any{
		"prompt":  "Write an opening line",
		"persona": "noir novelist",
		"tone":    "bleak",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "generated", decode[dto.GenerateResponse](t, body.Data).GeneratedText)

	req := e.gen.last()
	assert.True(t, req.AllowFallback, "allow_fallback defaults to true")
	assert.Equal(t, "Author persona: noir novelist. Tone: bleak.", req.SystemPrompt)

	_, _ = e.do(t, http.MethodPost, "/v1/ai/generate", map[string]any{"prompt": "x", "allow_fallback": false})
	assert.False(t, e.gen.last().AllowFallback)

	_, body = e.do(t, http.MethodPost, "/v1/ai/generate", map[string]any{"prompt": "x", "return_meta": true})
	meta := decode[struct {
		GeneratedText modelrouter.Result `json:"generated_text"`
	}](t, body.Data)
	assert.Equal(t, "gpt-5.1", meta.GeneratedText.ModelUsed)

	w, _ = e.do(t, http.MethodPost, "/v1/ai/generate", map[string]any{"prompt": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, "/v1/ai/generate", map[string]any{"prompt": "x", "temperature": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     int
		wantCode string
	}{
		{"credentials missing", modelrouter.CredentialsMissing(modelrouter.ProviderOpenAI, "OPENAI_API_KEY"), http.StatusBadRequest, "4007"},
		{"no candidates", &modelrouter.UnavailableError{Reason: modelrouter.ReasonNoCandidates}, http.StatusServiceUnavailable, "1008"},
		{"wrapped unavailable", fmt.Errorf("route: %w", &modelrouter.UnavailableError{Reason: modelrouter.ReasonUnknownModel}), http.StatusBadRequest, "4007"},
		{"app error", apperrors.ErrEmptyContent, http.StatusBadRequest, "4008"},
		{"provider failure", errors.New("upstream 500"), http.StatusBadGateway, "4001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(config.FeaturesConfig{})
			e.gen.err = tt.err

			w, body := e.do(t, http.MethodPost, "/v1/ai/generate", map[string]any{"prompt": "x"})
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.wantCode, body.errorCode())
		})
	}
}

func TestListModels(t *testing.T) {
	e := newEnv(config.FeaturesConfig{})

	w, body := e.do(t, http.MethodGet, "/v1/ai/models", nil)
	require.Equal(t, http.StatusOK, w.Code)
	specs := decode[[]modelrouter.ModelSpec](t, body.Data)
	require.Len(t, specs, 1)
	assert.Equal(t, "gpt-5.1", specs[0].Name)
}

func TestSearch(t *testing.T) {
	e := newEnv(config.FeaturesConfig{})
	long := strings.Repeat("雨", 250)
	e.searcher.hits = []retrieval.Hit{
		{Content: long, RefType: retrieval.RefTypeChapter, RefID: 3, Score: 0.9},
		{Content: "loose note", RefID: 8, Score: 0.4},
	}

	w, body := e.do(t, http.MethodPost, "/v1/ai/search", map[string]any{"project_id": 1, "query": "rain"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, retrieval.DefaultTopK, e.searcher.topK)

	items := decode[[]dto.SearchItem](t, body.Data)
	require.Len(t, items, 2)
	assert.Equal(t, "Chapter #3", items[0].Title)
	assert.Equal(t, 200, len([]rune(items[0].Snippet)))
	assert.Equal(t, long, items[0].Content)
	assert.Equal(t, "Note #8", items[1].Title)
	assert.Equal(t, "note", items[1].Type)

	w, _ = e.do(t, http.MethodPost, "/v1/ai/search", map[string]any{"query": "rain"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.searcher.err = errors.New("index down")
	w, body = e.do(t, http.MethodPost, "/v1/ai/search", map[string]any{"project_id": 1, "query": "rain", "top_k": 3})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "retrieval failed", body.Message)
	assert.Equal(t, "4003", body.errorCode())
	assert.NotContains(t, body.Error.Details, "index down")
}

func TestChapterAction(t *testing.T) {
	e := newEnv(config.FeaturesConfig{})
	pid := e.seedProject(t)
	ch := e.seedChapter(t, pid, "The ship left port.")

	tests := []struct {
		action   string
		want     int
		wantMode string
	}{
		{"expand", http.StatusOK, "expand"},
		{"rewrite", http.StatusOK, "rewrite"},
		{"draft", http.StatusOK, "draft"},
		{"polish", http.StatusOK, "polish"},
		{"suggest", http.StatusOK, "suggest"},
		{"summon", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			w, _ := e.do(t, http.MethodPost, fmt.Sprintf("/v1/chapters/%d/ai/%s", ch.ID, tt.action), map[string]any{"prompt": "more"})
			assert.Equal(t, tt.want, w.Code)
			if tt.wantMode != "" {
				assert.Equal(t, tt.wantMode, e.gen.last().Mode)
			}
		})
	}

	w, body := e.do(t, http.MethodPost, fmt.Sprintf("/v1/chapters/%d/ai/summon", ch.ID), map[string]any{"prompt": "more"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "1004", body.errorCode())
	assert.Equal(t, "unknown chapter action: summon", body.Error.Details)

	last := e.gen.requests[0]
	assert.Equal(t, "Existing content:\nThe ship left port.\n\nUser prompt:\nmore", last.Prompt)

	w, _ = e.do(t, http.MethodPost, "/v1/chapters/999/ai/expand", map[string]any{"prompt": "more"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChapterActionWithContext(t *testing.T) {
	e := newEnv(config.FeaturesConfig{})
	pid := e.seedProject(t)
	ch := e.seedChapter(t, pid, "The ship left port.")
	e.searcher.hits = []retrieval.Hit{
		{Content: "own chapter", RefType: retrieval.RefTypeChapter, RefID: ch.ID, Score: 0.99},
		{Content: "The harbor is foggy.", RefType: retrieval.RefTypeWorld, RefID: 2, Score: 0.8},
	}

	w, _ := e.do(t, http.MethodPost, fmt.Sprintf("/v1/chapters/%d/ai/expand", ch.ID), map[string]any{
		"prompt":       "continue",
		"with_context": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	prompt := e.gen.last().Prompt
	assert.Contains(t, prompt, "The harbor is foggy.")
	assert.NotContains(t, prompt, "own chapter")
	assert.Equal(t, "The ship left port.", e.searcher.query)
}

func TestAnalyzeChapter(t *testing.T) {
	e := newEnv(config.FeaturesConfig{})
	pid := e.seedProject(t)
	empty := e.seedChapter(t, pid, "")

	w, body := e.do(t, http.MethodPost, fmt.Sprintf("/v1/chapters/%d/analyze", empty.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Chapter has no content", body.Message)
	assert.Empty(t, e.gen.requests)

	full := e.seedChapter(t, pid, "Alice found a map.")
	e.gen.reply = "```json\n{\"characters_appeared\": [\"Alice\"], \"world_facts\": [\"Maps are rare\"], \"possible_clues\": [\"the map\"]}\n```"

	w, body = e.do(t, http.MethodPost, fmt.Sprintf("/v1/chapters/%d/analyze", full.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.AnalyzeChapterResponse](t, body.Data)
	assert.Equal(t, []string{"Alice"}, got.CharactersAppeared)
	assert.Equal(t, []string{"Maps are rare"}, got.WorldFacts)
	assert.Equal(t, []string{"the map"}, got.PossibleClues)

	clues, _ := e.clues.ListByProject(t.Context(), pid, "")
	require.Len(t, clues, 1)
	assert.Equal(t, "the map", clues[0].Description)

	e.gen.reply = "not json at all"
	_, body = e.do(t, http.MethodPost, fmt.Sprintf("/v1/chapters/%d/analyze", full.ID), nil)
	assert.JSONEq(t, `{"characters_appeared":[],"world_facts":[],"possible_clues":[]}`, string(body.Data))
}

func TestImproveCharacter(t *testing.T) {
	e := newEnv(config.FeaturesConfig{})
	pid := e.seedProject(t)
	w, body := e.do(t, http.MethodPost, fmt.Sprintf("/v1/projects/%d/characters", pid), map[string]any{"name": "Alice"})
	require.Equal(t, http.StatusCreated, w.Code)
	alice := decode[dto.CharacterResponse](t, body.Data)

	w, _ = e.do(t, http.MethodPost, fmt.Sprintf("/v1/characters/%d/ai/improve", alice.ID), map[string]any{"prompt": "deepen her past"})
	require.Equal(t, http.StatusOK, w.Code)

	req := e.gen.last()
	assert.Equal(t, "character_improve", req.Mode)
	assert.Contains(t, req.Prompt, "Character: Alice")
	assert.Contains(t, req.Prompt, "User request: deepen her past")
}

func TestWorldSkeleton(t *testing.T) {
	e := newEnv(config.FeaturesConfig{})
	pid := e.seedProject(t)

	w, _ := e.do(t, http.MethodPost, fmt.Sprintf("/v1/projects/%d/ai/world-skeleton", pid), map[string]any{"genre": "fantasy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, fmt.Sprintf("/v1/projects/%d/ai/world-skeleton", pid), map[string]any{
		"genre": "fantasy",
		"idea":  "floating islands",
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := e.gen.last()
	assert.Equal(t, "world", req.Task)
	assert.Equal(t, "world_consultant", req.Role)
	assert.Contains(t, req.Prompt, "floating islands")

	w, _ = e.do(t, http.MethodPost, "/v1/projects/404/ai/world-skeleton", map[string]any{"genre": "g", "idea": "i"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
