package repository

import (
	"context"

	"novel-assistant-api/internal/domain/entity"
)

// CharacterRepository 角色仓储接口
type CharacterRepository interface {
	Create(ctx context.Context, character *entity.Character) error
	GetByID(ctx context.Context, id int64) (*entity.Character, error)
	Update(ctx context.Context, character *entity.Character) error
	Delete(ctx context.Context, id int64) error

	// ListByProject 按 ID 倒序
	ListByProject(ctx context.Context, projectID int64) ([]*entity.Character, error)

	// FindByNames 按名字精确匹配项目内角色
	FindByNames(ctx context.Context, projectID int64, names []string) ([]*entity.Character, error)
}
