package retrieval

import "fmt"

// 常用引用类型
const (
	RefTypeChapter   = "chapter"
	RefTypeWorld     = "world"
	RefTypeCharacter = "character"
	RefTypeNote      = "note"
)

// ChunkKey 一组分块的归属：项目 + 引用类型 + 引用 ID
type ChunkKey struct {
	ProjectID int64
	RefType   string
	RefID     int64
}

func (k ChunkKey) String() string {
	return fmt.Sprintf("%d:%s:%d", k.ProjectID, k.RefType, k.RefID)
}

// ChunkID 单个分块的唯一标识 {project}:{type}:{ref}:{ordinal}
func (k ChunkKey) ChunkID(ordinal int) string {
	return fmt.Sprintf("%s:%d", k.String(), ordinal)
}

// Chunk 待写入索引的分块
type Chunk struct {
	Ordinal int
	Content string
	Vector  []float32
}

// Hit 检索命中，Score 为相似度（越大越相关）
type Hit struct {
	Content   string  `json:"content"`
	RefType   string  `json:"type"`
	RefID     int64   `json:"ref_id"`
	ProjectID int64   `json:"project_id"`
	Score     float64 `json:"score"`
}
