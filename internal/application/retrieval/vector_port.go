package retrieval

import "context"

// VectorIndex 向量索引端口，由 RediSearch 或 Milvus 实现
type VectorIndex interface {
	// EnsureIndex 幂等创建索引，dim 为向量维度
	EnsureIndex(ctx context.Context, dim int) error
	DeleteChunks(ctx context.Context, key ChunkKey) error
	// ReplaceChunks 删除 key 下旧分块并写入新分块，存储支持时在同一批次内完成
	ReplaceChunks(ctx context.Context, key ChunkKey, chunks []Chunk) error
	// Search 在项目范围内做 KNN 检索，按相似度从高到低返回
	Search(ctx context.Context, projectID int64, vector []float32, topK int) ([]Hit, error)
	Backend() string
}
