package entity

// Character 角色实体
type Character struct {
	ID          int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID   int64          `json:"project_id" gorm:"not null;uniqueIndex:uq_characters_project_name,priority:1"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:uq_characters_project_name,priority:2"`
	Role        *string        `json:"role" gorm:"type:varchar(100)"`
	Description *string        `json:"description" gorm:"type:text"`
	Traits      map[string]any `json:"traits" gorm:"type:jsonb;serializer:json"`
	Arc         *string        `json:"arc" gorm:"type:text"`

	Chapters []ChapterCharacter `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Character) TableName() string {
	return "characters"
}

// DescriptionText 角色简介，未设置时为空串
func (c *Character) DescriptionText() string {
	return deref(c.Description)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
