package milvus

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/pkg/metrics"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

const backendName = "milvus"

// VectorIndex 基于 Milvus 的分块索引，HNSW + COSINE
type VectorIndex struct {
	client *Client

	mu    sync.Mutex
	ready bool
	dim   int
}

// NewVectorIndex 创建 Milvus 向量索引
func NewVectorIndex(client *Client) *VectorIndex {
	return &VectorIndex{client: client}
}

func (v *VectorIndex) Backend() string {
	return backendName
}

func (v *VectorIndex) collection() string {
	return v.client.CollectionName(CollectionChunks)
}

// EnsureIndex 集合不存在时创建集合与索引，并加载到内存
func (v *VectorIndex) EnsureIndex(ctx context.Context, dim int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ready {
		if v.dim != dim {
			return fmt.Errorf("vector dimension mismatch: collection %d, got %d", v.dim, dim)
		}
		return nil
	}

	ctx, span := tracer.Start(ctx, "milvus.EnsureIndex",
		trace.WithAttributes(
			attribute.String("collection", v.collection()),
			attribute.Int("dim", dim),
		))
	defer span.End()

	exists, err := v.client.HasCollection(ctx, CollectionChunks)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		if err := v.createCollection(ctx, dim); err != nil {
			pkgtracer.RecordError(span, err)
			return err
		}
	}

	if err := v.client.LoadCollection(ctx, CollectionChunks); err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to load collection: %w", err)
	}
	v.ready = true
	v.dim = dim
	return nil
}

func (v *VectorIndex) createCollection(ctx context.Context, dim int) error {
	coll := v.collection()
	if err := v.client.milvus.CreateCollection(ctx, ChunksSchema(coll, dim), entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, v.hnswM(), v.hnswEf())
	if err != nil {
		return fmt.Errorf("failed to build index params: %w", err)
	}
	if err := v.client.milvus.CreateIndex(ctx, coll, fieldEmbedding, idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// DeleteChunks 按 project/ref_type/ref_id 删除
func (v *VectorIndex) DeleteChunks(ctx context.Context, key retrieval.ChunkKey) error {
	ctx, span := tracer.Start(ctx, "milvus.DeleteChunks",
		trace.WithAttributes(attribute.String("key", key.String())))
	defer span.End()

	exists, err := v.client.HasCollection(ctx, CollectionChunks)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return nil
	}

	if err := v.client.milvus.Delete(ctx, v.collection(), "", KeyFilter(key)); err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// ReplaceChunks Milvus 无跨操作事务，先删除再插入
func (v *VectorIndex) ReplaceChunks(ctx context.Context, key retrieval.ChunkKey, chunks []retrieval.Chunk) error {
	if err := v.DeleteChunks(ctx, key); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "milvus.InsertChunks",
		trace.WithAttributes(
			attribute.String("key", key.String()),
			attribute.Int("count", len(chunks)),
		))
	defer span.End()

	n := len(chunks)
	keys := make([]string, n)
	vectors := make([][]float32, n)
	projectIDs := make([]int64, n)
	refTypes := make([]string, n)
	refIDs := make([]int64, n)
	contents := make([]string, n)
	for i, c := range chunks {
		keys[i] = key.ChunkID(c.Ordinal)
		vectors[i] = c.Vector
		projectIDs[i] = key.ProjectID
		refTypes[i] = key.RefType
		refIDs[i] = key.RefID
		contents[i] = c.Content
	}

	_, err := v.client.milvus.Insert(ctx, v.collection(), "",
		entity.NewColumnVarChar(fieldChunkKey, keys),
		entity.NewColumnFloatVector(fieldEmbedding, len(vectors[0]), vectors),
		entity.NewColumnInt64(fieldProjectID, projectIDs),
		entity.NewColumnVarChar(fieldRefType, refTypes),
		entity.NewColumnInt64(fieldRefID, refIDs),
		entity.NewColumnVarChar(fieldContent, contents),
	)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return nil
}

// Search 项目内检索，COSINE 下 Milvus 返回的分数即相似度
func (v *VectorIndex) Search(ctx context.Context, projectID int64, vector []float32, topK int) ([]retrieval.Hit, error) {
	ctx, span := tracer.Start(ctx, "milvus.Search",
		trace.WithAttributes(
			attribute.Int64("project_id", projectID),
			attribute.Int("top_k", topK),
		))
	defer span.End()

	sp, err := entity.NewIndexHNSWSearchParam(v.searchEf(topK))
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	start := time.Now()
	results, err := v.client.milvus.Search(ctx,
		v.collection(),
		nil,
		ProjectFilter(projectID),
		[]string{fieldContent, fieldRefType, fieldRefID, fieldProjectID},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldEmbedding,
		entity.COSINE,
		topK,
		sp,
	)
	metrics.VectorSearchDuration.WithLabelValues(backendName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.VectorSearchTotal.WithLabelValues(backendName, "error").Inc()
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	metrics.VectorSearchTotal.WithLabelValues(backendName, "success").Inc()

	var hits []retrieval.Hit
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			hit := retrieval.Hit{Score: float64(result.Scores[i])}
			if col, ok := result.Fields.GetColumn(fieldContent).(*entity.ColumnVarChar); ok {
				hit.Content = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn(fieldRefType).(*entity.ColumnVarChar); ok {
				hit.RefType = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn(fieldRefID).(*entity.ColumnInt64); ok {
				hit.RefID = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn(fieldProjectID).(*entity.ColumnInt64); ok {
				hit.ProjectID = col.Data()[i]
			}
			hits = append(hits, hit)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(hits)))
	return hits, nil
}

func (v *VectorIndex) hnswM() int {
	if m := v.client.config.HNSWM; m > 0 {
		return m
	}
	return 40
}

func (v *VectorIndex) hnswEf() int {
	if ef := v.client.config.HNSWEfConstruction; ef > 0 {
		return ef
	}
	return 200
}

// searchEf HNSW 要求 ef >= topK
func (v *VectorIndex) searchEf(topK int) int {
	ef := v.client.config.SearchEf
	if ef <= 0 {
		ef = 128
	}
	return max(ef, topK)
}

// ProjectFilter 项目范围过滤表达式
func ProjectFilter(projectID int64) string {
	return fmt.Sprintf("%s == %d", fieldProjectID, projectID)
}

// KeyFilter 单个引用全部分块的过滤表达式
func KeyFilter(key retrieval.ChunkKey) string {
	return fmt.Sprintf("%s == %d && %s == %s && %s == %d",
		fieldProjectID, key.ProjectID,
		fieldRefType, strconv.Quote(key.RefType),
		fieldRefID, key.RefID,
	)
}
