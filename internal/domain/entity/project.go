// Package entity 定义领域实体
package entity

import (
	"time"
)

// Project 小说项目实体
type Project struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description *string   `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Volumes       []Volume       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Chapters      []Chapter      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Characters    []Character    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	WorldElements []WorldElement `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Clues         []Clue         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// NewProject 创建新项目
func NewProject(name string, description *string) *Project {
	return &Project{
		Name:        name,
		Description: description,
	}
}
