package postgres

import (
	"context"
	"fmt"

	"novel-assistant-api/internal/domain/entity"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

// VolumeRepository 卷仓储实现
type VolumeRepository struct {
	client *Client
}

// NewVolumeRepository 创建卷仓储
func NewVolumeRepository(client *Client) *VolumeRepository {
	return &VolumeRepository{client: client}
}

// Create 创建卷
func (r *VolumeRepository) Create(ctx context.Context, volume *entity.Volume) error {
	ctx, span := tracer.Start(ctx, "postgres.VolumeRepository.Create")
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(volume).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to create volume", err)
	}
	return nil
}

// GetByID 根据 ID 获取卷
func (r *VolumeRepository) GetByID(ctx context.Context, id int64) (*entity.Volume, error) {
	return firstByID[entity.Volume](ctx, r.client.db, "postgres.VolumeRepository.GetByID", id)
}

// Update 更新卷
func (r *VolumeRepository) Update(ctx context.Context, volume *entity.Volume) error {
	ctx, span := tracer.Start(ctx, "postgres.VolumeRepository.Update")
	defer span.End()

	err := getDB(ctx, r.client.db).
		Model(volume).
		Select("title", "index").
		Updates(volume).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to update volume", err)
	}
	return nil
}

// Delete 删除卷，章节的 volume_id 置空
func (r *VolumeRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID[entity.Volume](ctx, r.client.db, "postgres.VolumeRepository.Delete", id)
}

// ListByProject 获取项目卷列表
func (r *VolumeRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.Volume, error) {
	ctx, span := tracer.Start(ctx, "postgres.VolumeRepository.ListByProject")
	defer span.End()

	var volumes []*entity.Volume
	err := getDB(ctx, r.client.db).
		Where("project_id = ?", projectID).
		Order(`"index" ASC, id ASC`).
		Find(&volumes).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}
	return volumes, nil
}

// NextIndex 计算追加位置，删除造成的空洞不会被复用
func (r *VolumeRepository) NextIndex(ctx context.Context, projectID int64) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.VolumeRepository.NextIndex")
	defer span.End()

	var next int
	err := getDB(ctx, r.client.db).
		Model(&entity.Volume{}).
		Where("project_id = ?", projectID).
		Select(`COALESCE(MAX("index") + 1, 0)`).
		Scan(&next).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return 0, fmt.Errorf("failed to compute next volume index: %w", err)
	}
	return next, nil
}
