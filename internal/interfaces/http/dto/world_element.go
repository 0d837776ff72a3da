package dto

import (
	"novel-assistant-api/internal/domain/entity"
)

// CreateWorldElementRequest 创建设定条目请求
type CreateWorldElementRequest struct {
	Type    string         `json:"type" binding:"required,max=100"`
	Title   string         `json:"title" binding:"required,max=255"`
	Content *string        `json:"content,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// UpdateWorldElementRequest 更新设定条目请求
type UpdateWorldElementRequest struct {
	Type    *string        `json:"type,omitempty" binding:"omitempty,min=1,max=100"`
	Title   *string        `json:"title,omitempty" binding:"omitempty,min=1,max=255"`
	Content *string        `json:"content,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// WorldElementResponse 设定条目响应
type WorldElementResponse struct {
	ID        int64          `json:"id"`
	ProjectID int64          `json:"project_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Content   *string        `json:"content"`
	Extra     map[string]any `json:"extra"`
}

// ToWorldElementEntity 转换为领域实体
func (r *CreateWorldElementRequest) ToWorldElementEntity(projectID int64) *entity.WorldElement {
	return &entity.WorldElement{
		ProjectID: projectID,
		Type:      r.Type,
		Title:     r.Title,
		Content:   r.Content,
		Extra:     r.Extra,
	}
}

// ApplyTo 把非空字段写入实体
func (r *UpdateWorldElementRequest) ApplyTo(w *entity.WorldElement) {
	if r.Type != nil {
		w.Type = *r.Type
	}
	if r.Title != nil {
		w.Title = *r.Title
	}
	if r.Content != nil {
		w.Content = r.Content
	}
	if r.Extra != nil {
		w.Extra = r.Extra
	}
}

// ToWorldElementResponse 将领域实体转换为响应 DTO
func ToWorldElementResponse(w *entity.WorldElement) *WorldElementResponse {
	if w == nil {
		return nil
	}
	return &WorldElementResponse{
		ID:        w.ID,
		ProjectID: w.ProjectID,
		Type:      w.Type,
		Title:     w.Title,
		Content:   w.Content,
		Extra:     w.Extra,
	}
}

// ToWorldElementListResponse 批量转换
func ToWorldElementListResponse(items []*entity.WorldElement) []*WorldElementResponse {
	out := make([]*WorldElementResponse, 0, len(items))
	for _, w := range items {
		out = append(out, ToWorldElementResponse(w))
	}
	return out
}
