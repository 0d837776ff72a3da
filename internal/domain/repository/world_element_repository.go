package repository

import (
	"context"

	"novel-assistant-api/internal/domain/entity"
)

// WorldElementRepository 世界观条目仓储接口
type WorldElementRepository interface {
	Create(ctx context.Context, element *entity.WorldElement) error
	GetByID(ctx context.Context, id int64) (*entity.WorldElement, error)
	Update(ctx context.Context, element *entity.WorldElement) error
	Delete(ctx context.Context, id int64) error

	// ListByProject 按 ID 倒序
	ListByProject(ctx context.Context, projectID int64) ([]*entity.WorldElement, error)

	// ExistsByTitle 项目内标题是否已存在
	ExistsByTitle(ctx context.Context, projectID int64, title string) (bool, error)
}
