package dto

import (
	"time"

	"novel-assistant-api/internal/domain/entity"
)

// CreateChapterRequest 创建章节请求
type CreateChapterRequest struct {
	Title    string  `json:"title" binding:"required,max=255"`
	VolumeID *int64  `json:"volume_id,omitempty"`
	Summary  *string `json:"summary,omitempty"`
	Content  *string `json:"content,omitempty"`
}

// UpdateChapterRequest 更新章节请求，未给出的字段保持不变
type UpdateChapterRequest struct {
	Title    *string `json:"title,omitempty" binding:"omitempty,min=1,max=255"`
	VolumeID *int64  `json:"volume_id,omitempty"`
	Summary  *string `json:"summary,omitempty"`
	Content  *string `json:"content,omitempty"`
}

// ChapterResponse 章节响应
type ChapterResponse struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	VolumeID  *int64    `json:"volume_id"`
	Title     string    `json:"title"`
	Index     int       `json:"index"`
	Summary   *string   `json:"summary"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToChapterEntity 转换为领域实体
func (r *CreateChapterRequest) ToChapterEntity(projectID int64, index int) *entity.Chapter {
	ch := entity.NewChapter(projectID, index, r.Title)
	ch.VolumeID = r.VolumeID
	ch.Summary = r.Summary
	ch.Content = r.Content
	return ch
}

// ApplyTo 把非空字段写入实体
func (r *UpdateChapterRequest) ApplyTo(ch *entity.Chapter) {
	if r.Title != nil {
		ch.Title = *r.Title
	}
	if r.VolumeID != nil {
		ch.VolumeID = r.VolumeID
	}
	if r.Summary != nil {
		ch.Summary = r.Summary
	}
	if r.Content != nil {
		ch.Content = r.Content
	}
}

// ToChapterResponse 将领域实体转换为响应 DTO
func ToChapterResponse(ch *entity.Chapter) *ChapterResponse {
	if ch == nil {
		return nil
	}
	return &ChapterResponse{
		ID:        ch.ID,
		ProjectID: ch.ProjectID,
		VolumeID:  ch.VolumeID,
		Title:     ch.Title,
		Index:     ch.Index,
		Summary:   ch.Summary,
		Content:   ch.Content,
		CreatedAt: ch.CreatedAt,
		UpdatedAt: ch.UpdatedAt,
	}
}

// ToChapterListResponse 批量转换
func ToChapterListResponse(chapters []*entity.Chapter) []*ChapterResponse {
	out := make([]*ChapterResponse, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ToChapterResponse(ch))
	}
	return out
}
