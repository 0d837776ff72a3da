package entity

import (
	"time"
)

// Chapter 章节实体
type Chapter struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID int64     `json:"project_id" gorm:"not null;uniqueIndex:uq_chapters_project_index,priority:1"`
	VolumeID  *int64    `json:"volume_id" gorm:"index"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Index     int       `json:"index" gorm:"column:index;not null;default:0;uniqueIndex:uq_chapters_project_index,priority:2"`
	Content   *string   `json:"content" gorm:"type:text"`
	Summary   *string   `json:"summary" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Characters []ChapterCharacter `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// NewChapter 创建新章节，index 为追加位置
func NewChapter(projectID int64, index int, title string) *Chapter {
	return &Chapter{
		ProjectID: projectID,
		Index:     index,
		Title:     title,
	}
}

// Text 章节正文，未设置时为空串
func (c *Chapter) Text() string {
	if c.Content == nil {
		return ""
	}
	return *c.Content
}

// HasContent 是否有正文
func (c *Chapter) HasContent() bool {
	return c.Text() != ""
}

// ChapterCharacter 章节出场角色关联
type ChapterCharacter struct {
	ChapterID     int64   `json:"chapter_id" gorm:"primaryKey"`
	CharacterID   int64   `json:"character_id" gorm:"primaryKey"`
	RoleInChapter *string `json:"role_in_chapter" gorm:"type:varchar(100)"`
}

// TableName 指定表名
func (ChapterCharacter) TableName() string {
	return "chapter_characters"
}
