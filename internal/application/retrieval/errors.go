package retrieval

import "errors"

var (
	// ErrEmbeddingMismatch 向量数量与分块数量不一致
	ErrEmbeddingMismatch = errors.New("embedding count does not match chunk count")
	ErrEmptyEmbedding    = errors.New("embedding provider returned empty vector")
)
