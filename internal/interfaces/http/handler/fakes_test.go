package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/application/story"
	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/workflow/prompt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// store 极简内存表，按 ID 自增
type store[T any] struct {
	mu   sync.Mutex
	rows map[int64]*T
	next int64
	id   func(*T) *int64
}

func newStore[T any](id func(*T) *int64) *store[T] {
	return &store[T]{rows: map[int64]*T{}, id: id}
}

func (s *store[T]) create(v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	*s.id(v) = s.next
	cp := *v
	s.rows[s.next] = &cp
}

func (s *store[T]) get(id int64) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rows[id]
	if !ok {
		return nil
	}
	cp := *v
	return &cp
}

func (s *store[T]) put(v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.rows[*s.id(v)] = &cp
}

func (s *store[T]) remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
}

// filter 按 ID 升序返回满足条件的行
func (s *store[T]) filter(keep func(*T) bool) []*T {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*T
	for _, id := range ids {
		if keep(s.rows[id]) {
			cp := *s.rows[id]
			out = append(out, &cp)
		}
	}
	return out
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

type memProjects struct{ *store[entity.Project] }

func (m memProjects) Create(_ context.Context, p *entity.Project) error { m.create(p); return nil }
func (m memProjects) GetByID(_ context.Context, id int64) (*entity.Project, error) {
	return m.get(id), nil
}
func (m memProjects) Update(_ context.Context, p *entity.Project) error { m.put(p); return nil }
func (m memProjects) Delete(_ context.Context, id int64) error          { m.remove(id); return nil }
func (m memProjects) List(_ context.Context, p repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	all := reversed(m.filter(func(*entity.Project) bool { return true }))
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit(), len(all))
	return repository.NewPagedResult(all[start:end], int64(len(all)), p), nil
}

type memVolumes struct{ *store[entity.Volume] }

// Create 与 uq(project_id, index) 约束一致，重复时返回 ErrDuplicate
func (m memVolumes) Create(_ context.Context, v *entity.Volume) error {
	if len(m.filter(func(o *entity.Volume) bool { return o.ProjectID == v.ProjectID && o.Index == v.Index })) > 0 {
		return fmt.Errorf("failed to create volume: %w", repository.ErrDuplicate)
	}
	m.create(v)
	return nil
}
func (m memVolumes) GetByID(_ context.Context, id int64) (*entity.Volume, error) {
	return m.get(id), nil
}
func (m memVolumes) Update(_ context.Context, v *entity.Volume) error { m.put(v); return nil }
func (m memVolumes) Delete(_ context.Context, id int64) error         { m.remove(id); return nil }
func (m memVolumes) ListByProject(_ context.Context, pid int64) ([]*entity.Volume, error) {
	return m.filter(func(v *entity.Volume) bool { return v.ProjectID == pid }), nil
}
func (m memVolumes) NextIndex(_ context.Context, pid int64) (int, error) {
	next := 0
	for _, v := range m.filter(func(v *entity.Volume) bool { return v.ProjectID == pid }) {
		next = max(next, v.Index+1)
	}
	return next, nil
}

type memChapters struct {
	*store[entity.Chapter]
	chars *memCharacters
	links map[int64][]int64
}

func (m *memChapters) Create(_ context.Context, c *entity.Chapter) error { m.create(c); return nil }
func (m *memChapters) GetByID(_ context.Context, id int64) (*entity.Chapter, error) {
	return m.get(id), nil
}
func (m *memChapters) Update(_ context.Context, c *entity.Chapter) error { m.put(c); return nil }
func (m *memChapters) Delete(_ context.Context, id int64) error          { m.remove(id); return nil }
func (m *memChapters) ListByProject(_ context.Context, pid int64) ([]*entity.Chapter, error) {
	return m.filter(func(c *entity.Chapter) bool { return c.ProjectID == pid }), nil
}
func (m *memChapters) NextIndex(_ context.Context, pid int64) (int, error) {
	next := 0
	for _, c := range m.filter(func(c *entity.Chapter) bool { return c.ProjectID == pid }) {
		next = max(next, c.Index+1)
	}
	return next, nil
}
func (m *memChapters) ReplaceCharacters(_ context.Context, chapterID int64, ids []int64) error {
	m.links[chapterID] = ids
	return nil
}
func (m *memChapters) ListCharacters(_ context.Context, chapterID int64) ([]*entity.Character, error) {
	var out []*entity.Character
	for _, id := range m.links[chapterID] {
		if ch := m.chars.get(id); ch != nil {
			out = append(out, ch)
		}
	}
	return out, nil
}

type memCharacters struct{ *store[entity.Character] }

func (m *memCharacters) Create(_ context.Context, c *entity.Character) error { m.create(c); return nil }
func (m *memCharacters) GetByID(_ context.Context, id int64) (*entity.Character, error) {
	return m.get(id), nil
}
func (m *memCharacters) Update(_ context.Context, c *entity.Character) error { m.put(c); return nil }
func (m *memCharacters) Delete(_ context.Context, id int64) error            { m.remove(id); return nil }
func (m *memCharacters) ListByProject(_ context.Context, pid int64) ([]*entity.Character, error) {
	return reversed(m.filter(func(c *entity.Character) bool { return c.ProjectID == pid })), nil
}
func (m *memCharacters) FindByNames(_ context.Context, pid int64, names []string) ([]*entity.Character, error) {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return m.filter(func(c *entity.Character) bool { return c.ProjectID == pid && set[c.Name] }), nil
}

type memWorld struct{ *store[entity.WorldElement] }

func (m memWorld) Create(_ context.Context, w *entity.WorldElement) error { m.create(w); return nil }
func (m memWorld) GetByID(_ context.Context, id int64) (*entity.WorldElement, error) {
	return m.get(id), nil
}
func (m memWorld) Update(_ context.Context, w *entity.WorldElement) error { m.put(w); return nil }
func (m memWorld) Delete(_ context.Context, id int64) error               { m.remove(id); return nil }
func (m memWorld) ListByProject(_ context.Context, pid int64) ([]*entity.WorldElement, error) {
	return reversed(m.filter(func(w *entity.WorldElement) bool { return w.ProjectID == pid })), nil
}
func (m memWorld) ExistsByTitle(_ context.Context, pid int64, title string) (bool, error) {
	return len(m.filter(func(w *entity.WorldElement) bool { return w.ProjectID == pid && w.Title == title })) > 0, nil
}

type memClues struct{ *store[entity.Clue] }

func (m memClues) Create(_ context.Context, c *entity.Clue) error { m.create(c); return nil }
func (m memClues) CreateBatch(_ context.Context, clues []*entity.Clue) error {
	for _, c := range clues {
		m.create(c)
	}
	return nil
}
func (m memClues) GetByID(_ context.Context, id int64) (*entity.Clue, error) { return m.get(id), nil }
func (m memClues) Update(_ context.Context, c *entity.Clue) error            { m.put(c); return nil }
func (m memClues) Delete(_ context.Context, id int64) error                  { m.remove(id); return nil }
func (m memClues) ListByProject(_ context.Context, pid int64, status entity.ClueStatus) ([]*entity.Clue, error) {
	return reversed(m.filter(func(c *entity.Clue) bool {
		return c.ProjectID == pid && (status == "" || c.Status == status)
	})), nil
}

// passthroughTx 直接执行回调
type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeGenerator struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []modelrouter.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req modelrouter.Request) (*modelrouter.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &modelrouter.Response{Result: &modelrouter.Result{Text: f.reply, ModelUsed: "gpt-5.1"}}, nil
}

func (f *fakeGenerator) GenerateText(ctx context.Context, req modelrouter.Request) (string, error) {
	resp, err := f.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (f *fakeGenerator) last() modelrouter.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeIndexer struct {
	mu   sync.Mutex
	jobs []retrieval.IndexJob
}

func (f *fakeIndexer) Index(_ context.Context, job retrieval.IndexJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeSearcher struct {
	hits  []retrieval.Hit
	err   error
	query string
	topK  int
}

func (f *fakeSearcher) QuerySimilar(_ context.Context, _ int64, query string, topK int) ([]retrieval.Hit, error) {
	f.query, f.topK = query, topK
	return f.hits, f.err
}

func (f *fakeSearcher) SearchRelatedText(ctx context.Context, projectID int64, query string, topK int) ([]retrieval.Hit, error) {
	return f.QuerySimilar(ctx, projectID, query, topK)
}

type fakeCatalog []modelrouter.ModelSpec

func (f fakeCatalog) Specs() []modelrouter.ModelSpec { return f }

// env 装配好全部处理器与内存仓储
type env struct {
	projects   memProjects
	volumes    memVolumes
	chapters   *memChapters
	characters *memCharacters
	world      memWorld
	clues      memClues
	gen        *fakeGenerator
	indexer    *fakeIndexer
	searcher   *fakeSearcher
	engine     *gin.Engine
}

func newEnv(features config.FeaturesConfig) *env {
	e := &env{
		projects:   memProjects{newStore(func(p *entity.Project) *int64 { return &p.ID })},
		volumes:    memVolumes{newStore(func(v *entity.Volume) *int64 { return &v.ID })},
		characters: &memCharacters{newStore(func(c *entity.Character) *int64 { return &c.ID })},
		world:      memWorld{newStore(func(w *entity.WorldElement) *int64 { return &w.ID })},
		clues:      memClues{newStore(func(c *entity.Clue) *int64 { return &c.ID })},
		gen:        &fakeGenerator{reply: "generated"},
		indexer:    &fakeIndexer{},
		searcher:   &fakeSearcher{},
	}
	e.chapters = &memChapters{
		store: newStore(func(c *entity.Chapter) *int64 { return &c.ID }),
		chars: e.characters,
		links: map[int64][]int64{},
	}

	assistant := story.NewAssistant(e.gen, prompt.NewRegistry(), e.searcher, e.indexer, story.Repositories{
		Chapters:      e.chapters,
		Characters:    e.characters,
		WorldElements: e.world,
		Clues:         e.clues,
	})

	projectH := NewProjectHandler(e.projects)
	volumeH := NewVolumeHandler(e.projects, e.volumes)
	chapterH := NewChapterHandler(passthroughTx{}, e.projects, e.chapters, e.indexer, assistant, features)
	characterH := NewCharacterHandler(e.projects, e.characters, e.indexer, assistant)
	worldH := NewWorldElementHandler(e.projects, e.world, e.indexer)
	clueH := NewClueHandler(e.projects, e.clues)
	aiH := NewAIHandler(e.projects, e.chapters, assistant, e.searcher, fakeCatalog{
		{Name: "gpt-5.1", Provider: modelrouter.ProviderOpenAI, Tier: modelrouter.TierStrong},
	})

	r := gin.New()
	v1 := r.Group("/v1")
	v1.GET("/projects", projectH.ListProjects)
	v1.POST("/projects", projectH.CreateProject)
	v1.GET("/projects/:pid", projectH.GetProject)
	v1.PUT("/projects/:pid", projectH.UpdateProject)
	v1.DELETE("/projects/:pid", projectH.DeleteProject)
	v1.GET("/projects/:pid/volumes", volumeH.ListVolumes)
	v1.POST("/projects/:pid/volumes", volumeH.CreateVolume)
	v1.PUT("/volumes/:vid", volumeH.UpdateVolume)
	v1.DELETE("/volumes/:vid", volumeH.DeleteVolume)
	v1.GET("/projects/:pid/chapters", chapterH.ListChapters)
	v1.POST("/projects/:pid/chapters", chapterH.CreateChapter)
	v1.GET("/chapters/:cid", chapterH.GetChapter)
	v1.PUT("/chapters/:cid", chapterH.UpdateChapter)
	v1.DELETE("/chapters/:cid", chapterH.DeleteChapter)
	v1.GET("/chapters/:cid/characters", chapterH.ListChapterCharacters)
	v1.POST("/chapters/:cid/ai/:action", aiH.ChapterAction)
	v1.POST("/chapters/:cid/analyze", aiH.AnalyzeChapter)
	v1.GET("/projects/:pid/characters", characterH.ListCharacters)
	v1.POST("/projects/:pid/characters", characterH.CreateCharacter)
	v1.PUT("/characters/:id", characterH.UpdateCharacter)
	v1.DELETE("/characters/:id", characterH.DeleteCharacter)
	v1.POST("/characters/:id/ai/improve", characterH.ImproveCharacter)
	v1.GET("/projects/:pid/world-elements", worldH.ListWorldElements)
	v1.POST("/projects/:pid/world-elements", worldH.CreateWorldElement)
	v1.PUT("/world-elements/:id", worldH.UpdateWorldElement)
	v1.DELETE("/world-elements/:id", worldH.DeleteWorldElement)
	v1.GET("/projects/:pid/clues", clueH.ListClues)
	v1.POST("/projects/:pid/clues", clueH.CreateClue)
	v1.PUT("/clues/:id", clueH.UpdateClue)
	v1.DELETE("/clues/:id", clueH.DeleteClue)
	v1.POST("/projects/:pid/ai/world-skeleton", aiH.WorldSkeleton)
	v1.POST("/ai/generate", aiH.Generate)
	v1.GET("/ai/models", aiH.ListModels)
	v1.POST("/ai/search", aiH.Search)
	e.engine = r
	return e
}

// envelope 统一响应外壳
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		ErrorCode string `json:"error_code"`
		Details   string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func (e *env) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var out envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (e *env) seedProject(t *testing.T) int64 {
	t.Helper()
	p := entity.NewProject("Saga", nil)
	e.projects.create(p)
	return p.ID
}

func (e *env) seedChapter(t *testing.T, pid int64, content string) *entity.Chapter {
	t.Helper()
	ch := entity.NewChapter(pid, 0, "One")
	if content != "" {
		ch.Content = &content
	}
	e.chapters.create(ch)
	return ch
}

// errorCode 错误响应中的业务错误码，没有时为空
func (b envelope) errorCode() string {
	if b.Error == nil {
		return ""
	}
	return b.Error.ErrorCode
}
