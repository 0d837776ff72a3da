package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/config"
	"novel-assistant-api/pkg/metrics"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

const (
	backendName = "redis"

	fieldProjectID = "project_id"
	fieldType      = "type"
	fieldRefID     = "ref_id"
	fieldContent   = "content"
	fieldEmbedding = "embedding"
	fieldScore     = "score"

	defaultIndexName = "idx_novel_chunks"
	defaultKeyPrefix = "chunk:"
)

// VectorIndex 基于 RediSearch HNSW 的分块索引，文档为 HASH：{prefix}{pid}:{type}:{ref}:{idx}
type VectorIndex struct {
	client    *Client
	indexName string
	prefix    string
	m         int
	efc       int
	scanCount int64

	mu sync.Mutex
	// dim 已确认的向量维度，0 表示尚未检查
	dim int
}

// NewVectorIndex 创建 RediSearch 向量索引
func NewVectorIndex(client *Client, cfg *config.RediSearchConfig) *VectorIndex {
	v := &VectorIndex{
		client:    client,
		indexName: cfg.IndexName,
		prefix:    cfg.KeyPrefix,
		m:         cfg.HNSWM,
		efc:       cfg.HNSWEfConstruction,
		scanCount: cfg.ScanCount,
	}
	if v.indexName == "" {
		v.indexName = defaultIndexName
	}
	if v.prefix == "" {
		v.prefix = defaultKeyPrefix
	}
	if v.m <= 0 {
		v.m = 40
	}
	if v.efc <= 0 {
		v.efc = 200
	}
	if v.scanCount <= 0 {
		v.scanCount = 500
	}
	return v
}

func (v *VectorIndex) Backend() string {
	return backendName
}

// EnsureIndex 索引已存在时校验 DIM，否则 FT.CREATE；并发创建时 "Index already exists" 视为成功
func (v *VectorIndex) EnsureIndex(ctx context.Context, dim int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dim > 0 {
		if v.dim != dim {
			return fmt.Errorf("vector dimension mismatch: index %s has %d, got %d", v.indexName, v.dim, dim)
		}
		return nil
	}

	ctx, span := tracer.Start(ctx, "redis.vector.EnsureIndex",
		trace.WithAttributes(
			attribute.String("vector.index", v.indexName),
			attribute.Int("vector.dim", dim),
		))
	defer span.End()

	if info, err := v.client.rdb.Do(ctx, "FT.INFO", v.indexName).Result(); err == nil {
		if existing, ok := parseIndexDim(info, fieldEmbedding); ok && existing != dim {
			err := fmt.Errorf("vector dimension mismatch: index %s has %d, got %d", v.indexName, existing, dim)
			pkgtracer.RecordError(span, err)
			return err
		}
		v.dim = dim
		return nil
	}

	err := v.client.rdb.Do(ctx, v.createArgs(dim)...).Err()
	if err != nil && !strings.Contains(err.Error(), "Index already exists") {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to create index %s: %w", v.indexName, err)
	}
	v.dim = dim
	return nil
}

// parseIndexDim 从 FT.INFO 的 attributes 中读取向量字段的 DIM
func parseIndexDim(info interface{}, field string) (int, bool) {
	attrs, ok := replyField(info, "attributes")
	if !ok {
		return 0, false
	}
	list, ok := attrs.([]interface{})
	if !ok {
		return 0, false
	}
	for _, attr := range list {
		name, _ := replyField(attr, "identifier")
		if fmt.Sprint(name) != field {
			continue
		}
		dim, ok := replyField(attr, "dim")
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(fmt.Sprint(dim))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// replyField 按键读取 RESP2 扁平数组或 RESP3 map，键名不区分大小写
func replyField(reply interface{}, key string) (interface{}, bool) {
	switch r := reply.(type) {
	case []interface{}:
		for i := 0; i+1 < len(r); i += 2 {
			if strings.EqualFold(fmt.Sprint(r[i]), key) {
				return r[i+1], true
			}
		}
	case map[interface{}]interface{}:
		for k, val := range r {
			if strings.EqualFold(fmt.Sprint(k), key) {
				return val, true
			}
		}
	}
	return nil, false
}

func (v *VectorIndex) createArgs(dim int) []interface{} {
	return []interface{}{
		"FT.CREATE", v.indexName,
		"ON", "HASH",
		"PREFIX", 1, v.prefix,
		"SCHEMA",
		fieldProjectID, "NUMERIC", "SORTABLE",
		fieldType, "TAG",
		fieldRefID, "TAG",
		fieldContent, "TEXT",
		fieldEmbedding, "VECTOR", "HNSW", 10,
		"TYPE", "FLOAT32",
		"DIM", dim,
		"DISTANCE_METRIC", "COSINE",
		"M", v.m,
		"EF_CONSTRUCTION", v.efc,
	}
}

// DeleteChunks SCAN 匹配 key 前缀后批量 DEL
func (v *VectorIndex) DeleteChunks(ctx context.Context, key retrieval.ChunkKey) error {
	ctx, span := tracer.Start(ctx, "redis.vector.DeleteChunks",
		trace.WithAttributes(attribute.String("vector.key", key.String())))
	defer span.End()

	keys, err := v.scanKeys(ctx, key)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	span.SetAttributes(attribute.Int("vector.deleted", len(keys)))
	if err := v.client.rdb.Del(ctx, keys...).Err(); err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// ReplaceChunks 在一个 MULTI/EXEC 中删除旧分块并写入新分块
func (v *VectorIndex) ReplaceChunks(ctx context.Context, key retrieval.ChunkKey, chunks []retrieval.Chunk) error {
	ctx, span := tracer.Start(ctx, "redis.vector.ReplaceChunks",
		trace.WithAttributes(
			attribute.String("vector.key", key.String()),
			attribute.Int("vector.chunks", len(chunks)),
		))
	defer span.End()

	old, err := v.scanKeys(ctx, key)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return err
	}

	_, err = v.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(old) > 0 {
			pipe.Del(ctx, old...)
		}
		for _, c := range chunks {
			pipe.HSet(ctx, v.docKey(key, c.Ordinal), map[string]interface{}{
				fieldProjectID: key.ProjectID,
				fieldType:      key.RefType,
				fieldRefID:     key.RefID,
				fieldContent:   c.Content,
				fieldEmbedding: PackFloat32(c.Vector),
			})
		}
		return nil
	})
	if err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to write chunks: %w", err)
	}
	return nil
}

// Search 项目内 KNN 检索，score = 1 - 余弦距离
func (v *VectorIndex) Search(ctx context.Context, projectID int64, vector []float32, topK int) ([]retrieval.Hit, error) {
	ctx, span := tracer.Start(ctx, "redis.vector.Search",
		trace.WithAttributes(
			attribute.Int64("vector.project_id", projectID),
			attribute.Int("vector.top_k", topK),
		))
	defer span.End()

	start := time.Now()
	reply, err := v.client.rdb.Do(ctx, SearchArgs(v.indexName, projectID, vector, topK)...).Result()
	metrics.VectorSearchDuration.WithLabelValues(backendName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.VectorSearchTotal.WithLabelValues(backendName, "error").Inc()
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to search index %s: %w", v.indexName, err)
	}

	hits, err := parseSearchReply(reply)
	if err != nil {
		metrics.VectorSearchTotal.WithLabelValues(backendName, "error").Inc()
		pkgtracer.RecordError(span, err)
		return nil, err
	}
	metrics.VectorSearchTotal.WithLabelValues(backendName, "success").Inc()
	span.SetAttributes(attribute.Int("vector.hits", len(hits)))
	return hits, nil
}

// SearchArgs 构造 FT.SEARCH 命令参数
func SearchArgs(indexName string, projectID int64, vector []float32, topK int) []interface{} {
	query := fmt.Sprintf("@%s:[%d %d]=>[KNN %d @%s $vec AS %s]",
		fieldProjectID, projectID, projectID, topK, fieldEmbedding, fieldScore)
	return []interface{}{
		"FT.SEARCH", indexName, query,
		"SORTBY", fieldScore,
		"RETURN", 5, fieldContent, fieldType, fieldRefID, fieldProjectID, fieldScore,
		"LIMIT", 0, topK,
		"PARAMS", 2, "vec", PackFloat32(vector),
		"DIALECT", 2,
	}
}

func (v *VectorIndex) docKey(key retrieval.ChunkKey, ordinal int) string {
	return v.prefix + key.ChunkID(ordinal)
}

func (v *VectorIndex) scanKeys(ctx context.Context, key retrieval.ChunkKey) ([]string, error) {
	pattern := v.prefix + key.String() + ":*"
	iter := v.client.rdb.Scan(ctx, 0, pattern, v.scanCount).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan chunk keys: %w", err)
	}
	return keys, nil
}

// PackFloat32 按小端 float32 打包向量
func PackFloat32(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// parseSearchReply 解析 RESP2 形式的 FT.SEARCH 回复：[total, key, [field, value, ...], ...]
func parseSearchReply(reply interface{}) ([]retrieval.Hit, error) {
	items, ok := reply.([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("unexpected FT.SEARCH reply type %T", reply)
	}

	hits := make([]retrieval.Hit, 0, (len(items)-1)/2)
	for i := 1; i+1 < len(items); i += 2 {
		fields, ok := items[i+1].([]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected FT.SEARCH document type %T", items[i+1])
		}

		var hit retrieval.Hit
		for j := 0; j+1 < len(fields); j += 2 {
			name := toString(fields[j])
			val := toString(fields[j+1])
			switch name {
			case fieldContent:
				hit.Content = val
			case fieldType:
				hit.RefType = val
			case fieldRefID:
				hit.RefID, _ = strconv.ParseInt(val, 10, 64)
			case fieldProjectID:
				hit.ProjectID, _ = strconv.ParseInt(val, 10, 64)
			case fieldScore:
				if d, err := strconv.ParseFloat(val, 64); err == nil {
					hit.Score = 1 - d
				}
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
