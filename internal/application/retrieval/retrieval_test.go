package retrieval

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// letterEmbedder 按字母频次生成向量
type letterEmbedder struct {
	calls int
	err   error
}

func (e *letterEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v := make([]float64, 27)
		for _, r := range strings.ToLower(t) {
			if r >= 'a' && r <= 'z' {
				v[r-'a']++
			} else {
				v[26]++
			}
		}
		out[i] = v
	}
	return out, nil
}

type storedChunk struct {
	key   ChunkKey
	chunk Chunk
}

type memoryIndex struct {
	mu      sync.Mutex
	dim     int
	ensures int
	chunks  map[string]storedChunk
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{chunks: map[string]storedChunk{}}
}

func (m *memoryIndex) EnsureIndex(_ context.Context, dim int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensures++
	if m.dim == 0 {
		m.dim = dim
	}
	return nil
}

func (m *memoryIndex) DeleteChunks(_ context.Context, key ChunkKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.chunks {
		if c.key == key {
			delete(m.chunks, id)
		}
	}
	return nil
}

func (m *memoryIndex) ReplaceChunks(ctx context.Context, key ChunkKey, chunks []Chunk) error {
	_ = m.DeleteChunks(ctx, key)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[key.ChunkID(c.Ordinal)] = storedChunk{key: key, chunk: c}
	}
	return nil
}

func (m *memoryIndex) Search(_ context.Context, projectID int64, vector []float32, topK int) ([]Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hits []Hit
	for _, c := range m.chunks {
		if c.key.ProjectID != projectID {
			continue
		}
		hits = append(hits, Hit{
			Content:   c.chunk.Content,
			RefType:   c.key.RefType,
			RefID:     c.key.RefID,
			ProjectID: projectID,
			Score:     cosine(vector, c.chunk.Vector),
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *memoryIndex) Backend() string { return "memory" }

func (m *memoryIndex) count(key ChunkKey) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.chunks {
		if c.key == key {
			n++
		}
	}
	return n
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{name: "empty", text: "", size: 4, overlap: 1, want: nil},
		{name: "shorter than window", text: "abc", size: 4, overlap: 1, want: []string{"abc"}},
		{name: "exact window", text: "abcd", size: 4, overlap: 1, want: []string{"abcd"}},
		{name: "overlapping windows", text: "abcdefghij", size: 4, overlap: 1, want: []string{"abcd", "defg", "ghij"}},
		{name: "no overlap", text: "abcdefgh", size: 3, overlap: 0, want: []string{"abc", "def", "gh"}},
		{name: "overlap clamped", text: "abcde", size: 2, overlap: 5, want: []string{"ab", "bc", "cd", "de"}},
		{name: "negative overlap", text: "abcd", size: 2, overlap: -3, want: []string{"ab", "cd"}},
		{name: "runes not bytes", text: "天地玄黄宇宙", size: 4, overlap: 2, want: []string{"天地玄黄", "玄黄宇宙"}},
		{name: "whitespace kept", text: "  ab  ", size: 10, overlap: 1, want: []string{"  ab  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChunkText(tt.text, tt.size, tt.overlap))
		})
	}
}

func TestChunkTextDefaultSize(t *testing.T) {
	text := strings.Repeat("x", 1000)
	chunks := ChunkText(text, 0, 100)

	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 600)
	assert.Len(t, chunks[1], 500)
}

func TestChunkTextCoversInput(t *testing.T) {
	text := strings.Repeat("0123456789", 37)
	for size := 1; size < 40; size += 3 {
		for overlap := 0; overlap < size; overlap++ {
			chunks := ChunkText(text, size, overlap)
			require.NotEmpty(t, chunks)
			assert.True(t, strings.HasPrefix(text, chunks[0]))
			assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))
			for _, c := range chunks {
				assert.LessOrEqual(t, len(c), size)
			}
		}
	}
}

func TestServiceUpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx := newMemoryIndex()
	svc := NewService(&letterEmbedder{}, idx, Options{ChunkSize: 20, ChunkOverlap: 5})

	content := "the dragon sleeps beneath the old mountain while the village dreams of gold"
	require.NoError(t, svc.UpsertEmbedding(ctx, 1, RefTypeChapter, 7, content))

	key := ChunkKey{ProjectID: 1, RefType: RefTypeChapter, RefID: 7}
	assert.Equal(t, len(ChunkText(content, 20, 5)), idx.count(key))
	assert.Equal(t, 27, idx.dim)

	query := ChunkText(content, 20, 5)[1]
	hits, err := svc.QuerySimilar(ctx, 1, query, 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	found := false
	for _, h := range hits {
		if h.Content == query {
			found = true
			assert.Equal(t, int64(7), h.RefID)
			assert.Equal(t, RefTypeChapter, h.RefType)
			assert.InDelta(t, 1.0, h.Score, 1e-6)
		}
	}
	assert.True(t, found)
}

func TestServiceReindexReplacesChunks(t *testing.T) {
	ctx := context.Background()
	idx := newMemoryIndex()
	svc := NewService(&letterEmbedder{}, idx, Options{ChunkSize: 4, ChunkOverlap: 1})
	key := ChunkKey{ProjectID: 1, RefType: RefTypeWorld, RefID: 3}

	require.NoError(t, svc.UpsertEmbedding(ctx, 1, RefTypeWorld, 3, "abcdefghij"))
	assert.Equal(t, 3, idx.count(key))

	require.NoError(t, svc.UpsertEmbedding(ctx, 1, RefTypeWorld, 3, "abc"))
	assert.Equal(t, 1, idx.count(key))
}

func TestServiceEmptyContentDeletes(t *testing.T) {
	ctx := context.Background()
	idx := newMemoryIndex()
	emb := &letterEmbedder{}
	svc := NewService(emb, idx, Options{})

	require.NoError(t, svc.UpsertEmbedding(ctx, 9, RefTypeChapter, 7, "some chapter text"))
	require.NoError(t, svc.UpsertEmbedding(ctx, 9, RefTypeChapter, 7, ""))

	assert.Equal(t, 0, idx.count(ChunkKey{ProjectID: 9, RefType: RefTypeChapter, RefID: 7}))
	assert.Equal(t, 1, emb.calls)

	hits, err := svc.QuerySimilar(ctx, 9, "some chapter text", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestServiceDeleteEmbedding(t *testing.T) {
	ctx := context.Background()
	idx := newMemoryIndex()
	svc := NewService(&letterEmbedder{}, idx, Options{})
	key := ChunkKey{ProjectID: 2, RefType: RefTypeCharacter, RefID: 4}

	require.NoError(t, svc.UpsertEmbedding(ctx, 2, RefTypeCharacter, 4, "brave knight"))
	require.NoError(t, svc.DeleteEmbedding(ctx, 2, RefTypeCharacter, 4))
	assert.Zero(t, idx.count(key))
}

func TestServiceQueryScopedToProject(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&letterEmbedder{}, newMemoryIndex(), Options{})

	require.NoError(t, svc.UpsertEmbedding(ctx, 1, RefTypeChapter, 1, "alpha"))
	require.NoError(t, svc.UpsertEmbedding(ctx, 2, RefTypeChapter, 2, "alpha"))

	hits, err := svc.QuerySimilar(ctx, 2, "alpha", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(2), hits[0].ProjectID)
}

func TestServiceEmptyQuery(t *testing.T) {
	emb := &letterEmbedder{}
	svc := NewService(emb, newMemoryIndex(), Options{})

	hits, err := svc.QuerySimilar(context.Background(), 1, "", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Zero(t, emb.calls)
}

func TestServiceEmbedderError(t *testing.T) {
	svc := NewService(&letterEmbedder{err: errors.New("quota exceeded")}, newMemoryIndex(), Options{})

	err := svc.UpsertEmbedding(context.Background(), 1, RefTypeChapter, 1, "text")
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = svc.QuerySimilar(context.Background(), 1, "text", 5)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestClampTopK(t *testing.T) {
	svc := NewService(&letterEmbedder{}, newMemoryIndex(), Options{})

	assert.Equal(t, DefaultTopK, svc.clampTopK(0))
	assert.Equal(t, 7, svc.clampTopK(7))
	assert.Equal(t, MaxTopK, svc.clampTopK(500))
}

func TestSyncIndexer(t *testing.T) {
	idx := newMemoryIndex()
	svc := NewService(&letterEmbedder{}, idx, Options{})
	job := IndexJob{ProjectID: 5, RefType: RefTypeWorld, RefID: 8, Content: "floating islands"}

	require.NoError(t, NewSyncIndexer(svc).Index(context.Background(), job))
	assert.Equal(t, 1, idx.count(job.Key()))
}

func TestBuildContext(t *testing.T) {
	assert.Empty(t, BuildContext(nil, 100))

	hits := []Hit{
		{Content: "line one\n  continues", RefType: RefTypeChapter, RefID: 3},
		{Content: "   ", RefType: RefTypeWorld, RefID: 4},
		{Content: "lore", RefID: 5},
	}
	got := BuildContext(hits, 100)

	assert.Equal(t, "Related passages:\n[1] (chapter #3) line one continues\n[3] (note #5) lore", got)
}

func TestBuildContextBudget(t *testing.T) {
	hits := []Hit{
		{Content: strings.Repeat("a", 8), RefType: RefTypeChapter, RefID: 1},
		{Content: "second", RefType: RefTypeChapter, RefID: 2},
	}
	got := BuildContext(hits, 5)

	assert.Equal(t, "Related passages:\n[1] (chapter #1) aaaaa…", got)
}
