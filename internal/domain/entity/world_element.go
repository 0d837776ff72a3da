package entity

// WorldElementTypeFact 章节分析自动写入的设定条目类型
const WorldElementTypeFact = "fact"

// WorldElement 世界观设定条目
type WorldElement struct {
	ID        int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID int64          `json:"project_id" gorm:"not null;uniqueIndex:uq_world_elements_project_title,priority:1"`
	Type      string         `json:"type" gorm:"type:varchar(100);not null"`
	Title     string         `json:"title" gorm:"type:varchar(255);not null;uniqueIndex:uq_world_elements_project_title,priority:2"`
	Content   *string        `json:"content" gorm:"type:text"`
	Extra     map[string]any `json:"extra" gorm:"type:jsonb;serializer:json"`
}

// TableName 指定表名
func (WorldElement) TableName() string {
	return "world_elements"
}

// ContentText 设定正文，未设置时为空串
func (w *WorldElement) ContentText() string {
	return deref(w.Content)
}
