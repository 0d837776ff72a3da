package dto

import (
	"novel-assistant-api/internal/domain/entity"
)

// CreateCharacterRequest 创建角色请求
type CreateCharacterRequest struct {
	Name        string         `json:"name" binding:"required,max=255"`
	Role        *string        `json:"role,omitempty" binding:"omitempty,max=100"`
	Description *string        `json:"description,omitempty"`
	Traits      map[string]any `json:"traits,omitempty"`
	Arc         *string        `json:"arc,omitempty"`
}

// UpdateCharacterRequest 更新角色请求
type UpdateCharacterRequest struct {
	Name        *string        `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Role        *string        `json:"role,omitempty" binding:"omitempty,max=100"`
	Description *string        `json:"description,omitempty"`
	Traits      map[string]any `json:"traits,omitempty"`
	Arc         *string        `json:"arc,omitempty"`
}

// CharacterResponse 角色响应
type CharacterResponse struct {
	ID          int64          `json:"id"`
	ProjectID   int64          `json:"project_id"`
	Name        string         `json:"name"`
	Role        *string        `json:"role"`
	Description *string        `json:"description"`
	Traits      map[string]any `json:"traits"`
	Arc         *string        `json:"arc"`
}

// ToCharacterEntity 转换为领域实体
func (r *CreateCharacterRequest) ToCharacterEntity(projectID int64) *entity.Character {
	return &entity.Character{
		ProjectID:   projectID,
		Name:        r.Name,
		Role:        r.Role,
		Description: r.Description,
		Traits:      r.Traits,
		Arc:         r.Arc,
	}
}

// ApplyTo 把非空字段写入实体
func (r *UpdateCharacterRequest) ApplyTo(ch *entity.Character) {
	if r.Name != nil {
		ch.Name = *r.Name
	}
	if r.Role != nil {
		ch.Role = r.Role
	}
	if r.Description != nil {
		ch.Description = r.Description
	}
	if r.Traits != nil {
		ch.Traits = r.Traits
	}
	if r.Arc != nil {
		ch.Arc = r.Arc
	}
}

// ToCharacterResponse 将领域实体转换为响应 DTO
func ToCharacterResponse(ch *entity.Character) *CharacterResponse {
	if ch == nil {
		return nil
	}
	return &CharacterResponse{
		ID:          ch.ID,
		ProjectID:   ch.ProjectID,
		Name:        ch.Name,
		Role:        ch.Role,
		Description: ch.Description,
		Traits:      ch.Traits,
		Arc:         ch.Arc,
	}
}

// ToCharacterListResponse 批量转换
func ToCharacterListResponse(chars []*entity.Character) []*CharacterResponse {
	out := make([]*CharacterResponse, 0, len(chars))
	for _, ch := range chars {
		out = append(out, ToCharacterResponse(ch))
	}
	return out
}
