package postgres

import (
	"context"
	"fmt"

	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/repository"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

// ProjectRepository 项目仓储实现
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Create")
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(project).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to create project", err)
	}
	return nil
}

// GetByID 根据 ID 获取项目
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	return firstByID[entity.Project](ctx, r.client.db, "postgres.ProjectRepository.GetByID", id)
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Update")
	defer span.End()

	err := getDB(ctx, r.client.db).
		Model(project).
		Select("name", "description", "updated_at").
		Updates(project).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to update project", err)
	}
	return nil
}

// Delete 删除项目
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID[entity.Project](ctx, r.client.db, "postgres.ProjectRepository.Delete", id)
}

// List 获取项目列表
func (r *ProjectRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var total int64
	if err := db.Model(&entity.Project{}).Count(&total).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	var projects []*entity.Project
	err := db.Order("id DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&projects).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return repository.NewPagedResult(projects, total, pagination), nil
}
