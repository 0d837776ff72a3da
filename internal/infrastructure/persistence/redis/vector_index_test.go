package redis

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/config"
)

func TestPackFloat32(t *testing.T) {
	buf := PackFloat32([]float32{1.5, -2})

	require.Len(t, buf, 8)
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])))
	assert.Equal(t, float32(-2), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])))
	assert.Empty(t, PackFloat32(nil))
}

func TestSearchArgs(t *testing.T) {
	args := SearchArgs("idx_novel_chunks", 42, []float32{1}, 7)

	assert.Equal(t, "FT.SEARCH", args[0])
	assert.Equal(t, "idx_novel_chunks", args[1])
	assert.Equal(t, "@project_id:[42 42]=>[KNN 7 @embedding $vec AS score]", args[2])
	assert.Contains(t, args, "SORTBY")
	assert.Equal(t, 2, args[len(args)-1])
	assert.Equal(t, "DIALECT", args[len(args)-2])
	assert.Equal(t, PackFloat32([]float32{1}), args[len(args)-3])
}

func TestCreateArgs(t *testing.T) {
	v := NewVectorIndex(nil, &config.RediSearchConfig{})
	args := v.createArgs(1536)

	assert.Equal(t, []interface{}{
		"FT.CREATE", "idx_novel_chunks",
		"ON", "HASH",
		"PREFIX", 1, "chunk:",
		"SCHEMA",
		"project_id", "NUMERIC", "SORTABLE",
		"type", "TAG",
		"ref_id", "TAG",
		"content", "TEXT",
		"embedding", "VECTOR", "HNSW", 10,
		"TYPE", "FLOAT32",
		"DIM", 1536,
		"DISTANCE_METRIC", "COSINE",
		"M", 40,
		"EF_CONSTRUCTION", 200,
	}, args)
}

func TestDocKey(t *testing.T) {
	v := NewVectorIndex(nil, &config.RediSearchConfig{KeyPrefix: "c:"})
	key := retrieval.ChunkKey{ProjectID: 3, RefType: "chapter", RefID: 9}

	assert.Equal(t, "c:3:chapter:9:2", v.docKey(key, 2))
}

func TestParseSearchReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   interface{}
		want    []retrieval.Hit
		wantErr bool
	}{
		{
			name:  "no results",
			reply: []interface{}{int64(0)},
			want:  []retrieval.Hit{},
		},
		{
			name: "ranked documents",
			reply: []interface{}{
				int64(2),
				"chunk:1:chapter:7:0",
				[]interface{}{"score", "0.25", "content", "dragons", "type", "chapter", "ref_id", "7", "project_id", "1"},
				"chunk:1:world:3:0",
				[]interface{}{[]byte("score"), []byte("0.5"), []byte("content"), []byte("castle"), "type", "world", "ref_id", "3", "project_id", "1"},
			},
			want: []retrieval.Hit{
				{Content: "dragons", RefType: "chapter", RefID: 7, ProjectID: 1, Score: 0.75},
				{Content: "castle", RefType: "world", RefID: 3, ProjectID: 1, Score: 0.5},
			},
		},
		{
			name:    "not an array",
			reply:   "OK",
			wantErr: true,
		},
		{
			name:    "bad document",
			reply:   []interface{}{int64(1), "k", "oops"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSearchReply(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildRateLimitKey(t *testing.T) {
	assert.Equal(t, "ratelimit:ai:10.0.0.1", BuildRateLimitKey("ai", "10.0.0.1"))
}

func TestParseIndexDim(t *testing.T) {
	vectorAttr := []interface{}{
		"identifier", "embedding", "attribute", "embedding", "type", "VECTOR",
		"algorithm", "HNSW", "data_type", "FLOAT32", "dim", int64(1536), "distance_metric", "COSINE",
	}
	tagAttr := []interface{}{"identifier", "project_id", "attribute", "project_id", "type", "TAG"}

	tests := []struct {
		name    string
		info    interface{}
		wantDim int
		wantOK  bool
	}{
		{
			name:    "resp2 flat reply",
			info:    []interface{}{"index_name", "idx", "attributes", []interface{}{tagAttr, vectorAttr}, "num_docs", int64(3)},
			wantDim: 1536,
			wantOK:  true,
		},
		{
			name: "resp3 map with string dim",
			info: map[interface{}]interface{}{
				"attributes": []interface{}{map[interface{}]interface{}{"identifier": "embedding", "DIM": "768"}},
			},
			wantDim: 768,
			wantOK:  true,
		},
		{
			name: "no vector field",
			info: []interface{}{"attributes", []interface{}{tagAttr}},
		},
		{
			name: "no attributes",
			info: []interface{}{"index_name", "idx"},
		},
		{
			name: "unexpected reply",
			info: "OK",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dim, ok := parseIndexDim(tt.info, fieldEmbedding)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDim, dim)
		})
	}
}

func TestEnsureIndexCachedDimMismatch(t *testing.T) {
	v := &VectorIndex{indexName: "novel_chunks", dim: 1536}

	require.NoError(t, v.EnsureIndex(context.Background(), 1536))

	err := v.EnsureIndex(context.Background(), 768)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector dimension mismatch")
}
