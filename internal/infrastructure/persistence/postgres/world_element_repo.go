package postgres

import (
	"context"
	"fmt"

	"novel-assistant-api/internal/domain/entity"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

// WorldElementRepository 世界观条目仓储实现
type WorldElementRepository struct {
	client *Client
}

// NewWorldElementRepository 创建世界观条目仓储
func NewWorldElementRepository(client *Client) *WorldElementRepository {
	return &WorldElementRepository{client: client}
}

// Create 创建条目
func (r *WorldElementRepository) Create(ctx context.Context, element *entity.WorldElement) error {
	ctx, span := tracer.Start(ctx, "postgres.WorldElementRepository.Create")
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(element).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to create world element", err)
	}
	return nil
}

// GetByID 根据 ID 获取条目
func (r *WorldElementRepository) GetByID(ctx context.Context, id int64) (*entity.WorldElement, error) {
	return firstByID[entity.WorldElement](ctx, r.client.db, "postgres.WorldElementRepository.GetByID", id)
}

// Update 更新条目
func (r *WorldElementRepository) Update(ctx context.Context, element *entity.WorldElement) error {
	ctx, span := tracer.Start(ctx, "postgres.WorldElementRepository.Update")
	defer span.End()

	err := getDB(ctx, r.client.db).
		Model(element).
		Select("type", "title", "content", "extra").
		Updates(element).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to update world element", err)
	}
	return nil
}

// Delete 删除条目
func (r *WorldElementRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID[entity.WorldElement](ctx, r.client.db, "postgres.WorldElementRepository.Delete", id)
}

// ListByProject 获取项目世界观条目
func (r *WorldElementRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.WorldElement, error) {
	ctx, span := tracer.Start(ctx, "postgres.WorldElementRepository.ListByProject")
	defer span.End()

	var elements []*entity.WorldElement
	err := getDB(ctx, r.client.db).
		Where("project_id = ?", projectID).
		Order("id DESC").
		Find(&elements).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list world elements: %w", err)
	}
	return elements, nil
}

// ExistsByTitle 项目内标题是否已存在
func (r *WorldElementRepository) ExistsByTitle(ctx context.Context, projectID int64, title string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.WorldElementRepository.ExistsByTitle")
	defer span.End()

	var n int64
	err := getDB(ctx, r.client.db).
		Model(&entity.WorldElement{}).
		Where("project_id = ? AND title = ?", projectID, title).
		Count(&n).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return false, fmt.Errorf("failed to check world element title: %w", err)
	}
	return n > 0, nil
}
