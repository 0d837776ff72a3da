package entity

import (
	"github.com/lib/pq"
)

// ClueStatus 伏笔状态
type ClueStatus string

const (
	ClueStatusUnresolved ClueStatus = "unresolved"
	ClueStatusResolved   ClueStatus = "resolved"
)

// Valid 是否为已知状态
func (s ClueStatus) Valid() bool {
	return s == ClueStatusUnresolved || s == ClueStatusResolved
}

// Clue 伏笔实体，resolved_chapter_id 非空时状态必须为 resolved
type Clue struct {
	ID                  int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID           int64          `json:"project_id" gorm:"not null;index"`
	Description         string         `json:"description" gorm:"type:text;not null"`
	Status              ClueStatus     `json:"status" gorm:"type:varchar(20);not null;default:'unresolved';check:ck_clues_resolved_requires_status,(resolved_chapter_id IS NULL) OR (status = 'resolved')"`
	IntroducedChapterID *int64         `json:"introduced_chapter_id"`
	ResolvedChapterID   *int64         `json:"resolved_chapter_id"`
	Tags                pq.StringArray `json:"tags" gorm:"type:text[]"`

	IntroducedIn *Chapter `json:"-" gorm:"foreignKey:IntroducedChapterID;constraint:OnDelete:SET NULL"`
	ResolvedIn   *Chapter `json:"-" gorm:"foreignKey:ResolvedChapterID;constraint:OnDelete:SET NULL"`
}

// TableName 指定表名
func (Clue) TableName() string {
	return "clues"
}

// NewUnresolvedClue 章节分析发现的新伏笔
func NewUnresolvedClue(projectID, chapterID int64, description string) *Clue {
	return &Clue{
		ProjectID:           projectID,
		Description:         description,
		Status:              ClueStatusUnresolved,
		IntroducedChapterID: &chapterID,
	}
}

// ResolutionConsistent 已记录回收章节的伏笔状态必须为 resolved
func (c *Clue) ResolutionConsistent() bool {
	return c.ResolvedChapterID == nil || c.Status == ClueStatusResolved
}
