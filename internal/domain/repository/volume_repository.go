package repository

import (
	"context"

	"novel-assistant-api/internal/domain/entity"
)

// VolumeRepository 卷仓储接口
type VolumeRepository interface {
	Create(ctx context.Context, volume *entity.Volume) error
	GetByID(ctx context.Context, id int64) (*entity.Volume, error)
	Update(ctx context.Context, volume *entity.Volume) error
	Delete(ctx context.Context, id int64) error

	// ListByProject 按 index 升序
	ListByProject(ctx context.Context, projectID int64) ([]*entity.Volume, error)

	// NextIndex 项目内追加位置：现有最大 index + 1，没有记录时为 0
	NextIndex(ctx context.Context, projectID int64) (int, error)
}
