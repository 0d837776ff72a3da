package repository

import (
	"context"

	"novel-assistant-api/internal/domain/entity"
)

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	// Create 创建项目
	Create(ctx context.Context, project *entity.Project) error

	// GetByID 根据 ID 获取项目，不存在返回 nil, nil
	GetByID(ctx context.Context, id int64) (*entity.Project, error)

	// Update 更新项目
	Update(ctx context.Context, project *entity.Project) error

	// Delete 删除项目，级联删除下属数据
	Delete(ctx context.Context, id int64) error

	// List 获取项目列表，按 ID 倒序
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Project], error)
}
