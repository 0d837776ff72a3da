package dto

import (
	"novel-assistant-api/internal/domain/entity"
)

// CreateClueRequest 创建伏笔请求，status 缺省为 unresolved
type CreateClueRequest struct {
	Description         string   `json:"description" binding:"required"`
	Status              string   `json:"status,omitempty" binding:"omitempty,oneof=unresolved resolved"`
	IntroducedChapterID *int64   `json:"introduced_chapter_id,omitempty"`
	ResolvedChapterID   *int64   `json:"resolved_chapter_id,omitempty"`
	Tags                []string `json:"tags,omitempty"`
}

// UpdateClueRequest 更新伏笔请求
type UpdateClueRequest struct {
	Description         *string  `json:"description,omitempty" binding:"omitempty,min=1"`
	Status              *string  `json:"status,omitempty" binding:"omitempty,oneof=unresolved resolved"`
	IntroducedChapterID *int64   `json:"introduced_chapter_id,omitempty"`
	ResolvedChapterID   *int64   `json:"resolved_chapter_id,omitempty"`
	Tags                []string `json:"tags,omitempty"`
}

// ClueResponse 伏笔响应
type ClueResponse struct {
	ID                  int64    `json:"id"`
	ProjectID           int64    `json:"project_id"`
	Description         string   `json:"description"`
	Status              string   `json:"status"`
	IntroducedChapterID *int64   `json:"introduced_chapter_id"`
	ResolvedChapterID   *int64   `json:"resolved_chapter_id"`
	Tags                []string `json:"tags"`
}

// ToClueEntity 转换为领域实体
func (r *CreateClueRequest) ToClueEntity(projectID int64) *entity.Clue {
	status := entity.ClueStatus(r.Status)
	if status == "" {
		status = entity.ClueStatusUnresolved
	}
	return &entity.Clue{
		ProjectID:           projectID,
		Description:         r.Description,
		Status:              status,
		IntroducedChapterID: r.IntroducedChapterID,
		ResolvedChapterID:   r.ResolvedChapterID,
		Tags:                r.Tags,
	}
}

// ApplyTo 把非空字段写入实体
func (r *UpdateClueRequest) ApplyTo(cl *entity.Clue) {
	if r.Description != nil {
		cl.Description = *r.Description
	}
	if r.Status != nil {
		cl.Status = entity.ClueStatus(*r.Status)
	}
	if r.IntroducedChapterID != nil {
		cl.IntroducedChapterID = r.IntroducedChapterID
	}
	if r.ResolvedChapterID != nil {
		cl.ResolvedChapterID = r.ResolvedChapterID
	}
	if r.Tags != nil {
		cl.Tags = r.Tags
	}
}

// ToClueResponse 将领域实体转换为响应 DTO
func ToClueResponse(cl *entity.Clue) *ClueResponse {
	if cl == nil {
		return nil
	}
	return &ClueResponse{
		ID:                  cl.ID,
		ProjectID:           cl.ProjectID,
		Description:         cl.Description,
		Status:              string(cl.Status),
		IntroducedChapterID: cl.IntroducedChapterID,
		ResolvedChapterID:   cl.ResolvedChapterID,
		Tags:                cl.Tags,
	}
}

// ToClueListResponse 批量转换
func ToClueListResponse(clues []*entity.Clue) []*ClueResponse {
	out := make([]*ClueResponse, 0, len(clues))
	for _, cl := range clues {
		out = append(out, ToClueResponse(cl))
	}
	return out
}
