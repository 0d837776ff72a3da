package milvus

import (
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionChunks 文本分块集合
	CollectionChunks = "novel_chunks"

	fieldChunkKey  = "chunk_key"
	fieldProjectID = "project_id"
	fieldRefType   = "ref_type"
	fieldRefID     = "ref_id"
	fieldContent   = "content"
	fieldEmbedding = "embedding"
)

// ChunksSchema 分块集合 Schema，dim 取自首次写入的向量
func ChunksSchema(name string, dim int) *entity.Schema {
	return &entity.Schema{
		CollectionName: name,
		Description:    "Novel text chunks for semantic search",
		Fields: []*entity.Field{
			{
				Name:       fieldChunkKey,
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     fieldEmbedding,
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(dim),
				},
			},
			{
				Name:     fieldProjectID,
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     fieldRefType,
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     fieldRefID,
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     fieldContent,
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}
