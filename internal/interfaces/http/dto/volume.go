package dto

import (
	"novel-assistant-api/internal/domain/entity"
)

// CreateVolumeRequest 创建卷请求
type CreateVolumeRequest struct {
	Title string `json:"title" binding:"required,max=255"`
	// Index 为空时追加到末尾
	Index *int `json:"index,omitempty" binding:"omitempty,gte=0"`
}

// UpdateVolumeRequest 更新卷请求
type UpdateVolumeRequest struct {
	Title *string `json:"title,omitempty" binding:"omitempty,min=1,max=255"`
	Index *int    `json:"index,omitempty" binding:"omitempty,gte=0"`
}

// VolumeResponse 卷响应
type VolumeResponse struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Title     string `json:"title"`
	Index     int    `json:"index"`
}

// ApplyTo 把非空字段写入实体
func (r *UpdateVolumeRequest) ApplyTo(v *entity.Volume) {
	if r.Title != nil {
		v.Title = *r.Title
	}
	if r.Index != nil {
		v.Index = *r.Index
	}
}

// ToVolumeResponse 将领域实体转换为响应 DTO
func ToVolumeResponse(v *entity.Volume) *VolumeResponse {
	if v == nil {
		return nil
	}
	return &VolumeResponse{
		ID:        v.ID,
		ProjectID: v.ProjectID,
		Title:     v.Title,
		Index:     v.Index,
	}
}

// ToVolumeListResponse 批量转换
func ToVolumeListResponse(volumes []*entity.Volume) []*VolumeResponse {
	out := make([]*VolumeResponse, 0, len(volumes))
	for _, v := range volumes {
		out = append(out, ToVolumeResponse(v))
	}
	return out
}
