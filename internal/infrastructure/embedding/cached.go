package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	"novel-assistant-api/pkg/metrics"
)

const defaultCacheTTL = 24 * time.Hour

// cacheStore 查询向量缓存的存储端口，由 redis.Cache 实现
type cacheStore interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
}

// CachedEmbedder 缓存单条文本的向量，批量请求直接透传
type CachedEmbedder struct {
	inner embedding.Embedder
	cache cacheStore
	model string
	ttl   time.Duration
}

// NewCachedEmbedder 创建带缓存的 Embedder
func NewCachedEmbedder(inner embedding.Embedder, cache cacheStore, model string, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedEmbedder{inner: inner, cache: cache, model: model, ttl: ttl}
}

func (e *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if len(texts) != 1 {
		return e.inner.EmbedStrings(ctx, texts, opts...)
	}

	loaded := false
	raw, err := e.cache.GetOrLoadSafe(ctx, CacheKey(e.model, texts[0]), e.ttl, func() (interface{}, error) {
		loaded = true
		vectors, err := e.inner.EmbedStrings(ctx, texts, opts...)
		if err != nil {
			return nil, err
		}
		if len(vectors) != 1 {
			return nil, fmt.Errorf("embedding count mismatch: want 1, got %d", len(vectors))
		}
		return vectors[0], nil
	})
	if err != nil {
		metrics.EmbeddingCacheTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if loaded {
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
	} else {
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
	}

	var vector []float64
	if err := json.Unmarshal(raw, &vector); err != nil {
		return nil, fmt.Errorf("failed to decode cached embedding: %w", err)
	}
	return [][]float64{vector}, nil
}

// CacheKey emb:{model}:{sha256(text)}
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("emb:%s:%s", model, hex.EncodeToString(sum[:]))
}
