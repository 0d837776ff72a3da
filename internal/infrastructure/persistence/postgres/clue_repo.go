package postgres

import (
	"context"
	"fmt"

	"novel-assistant-api/internal/domain/entity"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

// ClueRepository 伏笔仓储实现
type ClueRepository struct {
	client *Client
}

// NewClueRepository 创建伏笔仓储
func NewClueRepository(client *Client) *ClueRepository {
	return &ClueRepository{client: client}
}

// Create 创建伏笔
func (r *ClueRepository) Create(ctx context.Context, clue *entity.Clue) error {
	ctx, span := tracer.Start(ctx, "postgres.ClueRepository.Create")
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(clue).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to create clue", err)
	}
	return nil
}

// CreateBatch 批量创建伏笔
func (r *ClueRepository) CreateBatch(ctx context.Context, clues []*entity.Clue) error {
	if len(clues) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "postgres.ClueRepository.CreateBatch")
	defer span.End()

	if err := getDB(ctx, r.client.db).CreateInBatches(clues, 100).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to create clues", err)
	}
	return nil
}

// GetByID 根据 ID 获取伏笔
func (r *ClueRepository) GetByID(ctx context.Context, id int64) (*entity.Clue, error) {
	return firstByID[entity.Clue](ctx, r.client.db, "postgres.ClueRepository.GetByID", id)
}

// Update 更新伏笔
func (r *ClueRepository) Update(ctx context.Context, clue *entity.Clue) error {
	ctx, span := tracer.Start(ctx, "postgres.ClueRepository.Update")
	defer span.End()

	err := getDB(ctx, r.client.db).
		Model(clue).
		Select("description", "status", "introduced_chapter_id", "resolved_chapter_id", "tags").
		Updates(clue).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to update clue", err)
	}
	return nil
}

// Delete 删除伏笔
func (r *ClueRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID[entity.Clue](ctx, r.client.db, "postgres.ClueRepository.Delete", id)
}

// ListByProject 获取项目伏笔，可按状态过滤
func (r *ClueRepository) ListByProject(ctx context.Context, projectID int64, status entity.ClueStatus) ([]*entity.Clue, error) {
	ctx, span := tracer.Start(ctx, "postgres.ClueRepository.ListByProject")
	defer span.End()

	q := getDB(ctx, r.client.db).Where("project_id = ?", projectID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var clues []*entity.Clue
	if err := q.Order("id DESC").Find(&clues).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list clues: %w", err)
	}
	return clues, nil
}
