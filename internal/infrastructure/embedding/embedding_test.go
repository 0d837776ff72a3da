package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-assistant-api/internal/config"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t)), 1}
	}
	return out, nil
}

type memoryCache struct {
	data map[string][]byte
}

func (m *memoryCache) GetOrLoadSafe(_ context.Context, key string, _ time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	v, err := loader()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m.data[key] = b
	return b, nil
}

func TestCachedEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("single text is cached", func(t *testing.T) {
		inner := &fakeEmbedder{}
		e := NewCachedEmbedder(inner, &memoryCache{data: map[string][]byte{}}, "m", 0)

		first, err := e.EmbedStrings(ctx, []string{"hello"})
		require.NoError(t, err)
		second, err := e.EmbedStrings(ctx, []string{"hello"})
		require.NoError(t, err)

		assert.Equal(t, [][]float64{{5, 1}}, first)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("batch bypasses cache", func(t *testing.T) {
		inner := &fakeEmbedder{}
		cache := &memoryCache{data: map[string][]byte{}}
		e := NewCachedEmbedder(inner, cache, "m", time.Minute)

		_, err := e.EmbedStrings(ctx, []string{"a", "bb"})
		require.NoError(t, err)
		_, err = e.EmbedStrings(ctx, []string{"a", "bb"})
		require.NoError(t, err)

		assert.Equal(t, 2, inner.calls)
		assert.Empty(t, cache.data)
	})

	t.Run("loader error propagates", func(t *testing.T) {
		inner := &fakeEmbedder{err: errors.New("boom")}
		e := NewCachedEmbedder(inner, &memoryCache{data: map[string][]byte{}}, "m", 0)

		_, err := e.EmbedStrings(ctx, []string{"x"})
		assert.EqualError(t, err, "boom")
	})
}

func TestCacheKey(t *testing.T) {
	k1 := CacheKey("text-embedding-3-small", "abc")
	k2 := CacheKey("text-embedding-3-small", "abd")

	assert.Regexp(t, `^emb:text-embedding-3-small:[0-9a-f]{64}$`, k1)
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, CacheKey("other", "abc"))
}

func TestHTTPClient(t *testing.T) {
	var batches [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		batches = append(batches, req.Texts)

		resp := embedResponse{}
		for range req.Texts {
			resp.Embeddings = append(resp.Embeddings, []float64{0.5})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewHTTPClient(&config.EmbeddingConfig{BaseURL: srv.URL, Model: "bge", BatchSize: 2})
	vectors, err := c.EmbedStrings(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Len(t, vectors, 3)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, batches)
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(&config.EmbeddingConfig{BaseURL: srv.URL})
	_, err := c.EmbedStrings(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "status=502")
}

func TestNewEinoEmbedderValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewEinoEmbedder(ctx, &config.EmbeddingConfig{Provider: "openai"})
	assert.ErrorContains(t, err, "api key")

	_, err = NewEinoEmbedder(ctx, &config.EmbeddingConfig{Provider: "http"})
	assert.ErrorContains(t, err, "base_url")

	_, err = NewEinoEmbedder(ctx, &config.EmbeddingConfig{Provider: "nope"})
	assert.ErrorContains(t, err, "unsupported")

	e, err := NewEinoEmbedder(ctx, &config.EmbeddingConfig{Provider: "http", BaseURL: "http://localhost:1"})
	require.NoError(t, err)
	assert.NotNil(t, e)
}
