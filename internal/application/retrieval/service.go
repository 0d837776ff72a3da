// Package retrieval 负责文本分块、向量化写入索引以及项目内相似检索
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"novel-assistant-api/internal/config"
	"novel-assistant-api/pkg/logger"
	"novel-assistant-api/pkg/metrics"
	"novel-assistant-api/pkg/tracer"
)

const (
	DefaultTopK = 5
	MaxTopK     = 50
)

var retrievalTracer = otel.Tracer("retrieval")

// Options 分块与检索参数
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	DefaultTopK  int
	MaxTopK      int
}

// OptionsFromConfig 从配置构建参数，缺省值回落到内置默认
func OptionsFromConfig(cfg *config.RetrievalConfig) Options {
	if cfg == nil {
		return Options{}.withDefaults()
	}
	return Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		DefaultTopK:  cfg.DefaultTopK,
		MaxTopK:      cfg.MaxTopK,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkOverlap < 0 {
		o.ChunkOverlap = DefaultChunkOverlap
	}
	if o.DefaultTopK <= 0 {
		o.DefaultTopK = DefaultTopK
	}
	if o.MaxTopK <= 0 {
		o.MaxTopK = MaxTopK
	}
	return o
}

// Service 检索服务
type Service struct {
	embedder embedding.Embedder
	index    VectorIndex
	opts     Options
}

// NewService 创建检索服务
func NewService(embedder embedding.Embedder, index VectorIndex, opts Options) *Service {
	return &Service{
		embedder: embedder,
		index:    index,
		opts:     opts.withDefaults(),
	}
}

// UpsertEmbedding 重建 (project, refType, refID) 的全部分块；内容为空时走删除路径
func (s *Service) UpsertEmbedding(ctx context.Context, projectID int64, refType string, refID int64, content string) error {
	key := ChunkKey{ProjectID: projectID, RefType: refType, RefID: refID}

	ctx, span := retrievalTracer.Start(ctx, "retrieval.UpsertEmbedding",
		trace.WithAttributes(
			attribute.Int64("retrieval.project_id", projectID),
			attribute.String("retrieval.ref_type", refType),
			attribute.Int64("retrieval.ref_id", refID),
		))
	defer span.End()

	chunks := ChunkText(content, s.opts.ChunkSize, s.opts.ChunkOverlap)
	if len(chunks) == 0 {
		return s.delete(ctx, key)
	}

	vectors, err := s.embedder.EmbedStrings(ctx, chunks)
	if err != nil {
		s.observeIndex(refType, "upsert", err)
		tracer.RecordError(span, err)
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		s.observeIndex(refType, "upsert", ErrEmbeddingMismatch)
		return fmt.Errorf("%w: want %d, got %d", ErrEmbeddingMismatch, len(chunks), len(vectors))
	}

	dim := len(vectors[0])
	if dim == 0 {
		s.observeIndex(refType, "upsert", ErrEmptyEmbedding)
		return ErrEmptyEmbedding
	}
	if err := s.index.EnsureIndex(ctx, dim); err != nil {
		s.observeIndex(refType, "upsert", err)
		tracer.RecordError(span, err)
		return fmt.Errorf("failed to ensure vector index: %w", err)
	}

	items := make([]Chunk, len(chunks))
	for i, text := range chunks {
		items[i] = Chunk{Ordinal: i, Content: text, Vector: toFloat32(vectors[i])}
	}
	if err := s.index.ReplaceChunks(ctx, key, items); err != nil {
		s.observeIndex(refType, "upsert", err)
		tracer.RecordError(span, err)
		return fmt.Errorf("failed to replace chunks: %w", err)
	}

	s.observeIndex(refType, "upsert", nil)
	metrics.RetrievalChunksWritten.WithLabelValues(refType).Add(float64(len(items)))
	span.SetAttributes(attribute.Int("retrieval.chunks", len(items)))
	logger.Debug(ctx, "chunks indexed",
		"key", key.String(),
		"chunks", len(items),
		"backend", s.index.Backend(),
	)
	return nil
}

// DeleteEmbedding 删除 (project, refType, refID) 的全部分块
func (s *Service) DeleteEmbedding(ctx context.Context, projectID int64, refType string, refID int64) error {
	return s.delete(ctx, ChunkKey{ProjectID: projectID, RefType: refType, RefID: refID})
}

func (s *Service) delete(ctx context.Context, key ChunkKey) error {
	err := s.index.DeleteChunks(ctx, key)
	s.observeIndex(key.RefType, "delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// QuerySimilar 返回项目内与 query 最相近的分块，保持检索引擎的排序
func (s *Service) QuerySimilar(ctx context.Context, projectID int64, query string, topK int) ([]Hit, error) {
	if query == "" {
		return []Hit{}, nil
	}
	topK = s.clampTopK(topK)

	ctx, span := retrievalTracer.Start(ctx, "retrieval.QuerySimilar",
		trace.WithAttributes(
			attribute.Int64("retrieval.project_id", projectID),
			attribute.Int("retrieval.top_k", topK),
		))
	defer span.End()

	vectors, err := s.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}

	vec := toFloat32(vectors[0])
	if err := s.index.EnsureIndex(ctx, len(vec)); err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to ensure vector index: %w", err)
	}

	hits, err := s.index.Search(ctx, projectID, vec, topK)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	span.SetAttributes(attribute.Int("retrieval.hits", len(hits)))
	return hits, nil
}

// SearchRelatedText QuerySimilar 的别名，供业务层检索相关段落
func (s *Service) SearchRelatedText(ctx context.Context, projectID int64, query string, topK int) ([]Hit, error) {
	return s.QuerySimilar(ctx, projectID, strings.TrimSpace(query), topK)
}

// EnsureIndex 预建索引
func (s *Service) EnsureIndex(ctx context.Context, dim int) error {
	return s.index.EnsureIndex(ctx, dim)
}

func (s *Service) clampTopK(topK int) int {
	if topK <= 0 {
		return s.opts.DefaultTopK
	}
	if topK > s.opts.MaxTopK {
		return s.opts.MaxTopK
	}
	return topK
}

func (s *Service) observeIndex(refType, op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RetrievalIndexTotal.WithLabelValues(refType, op, status).Inc()
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
