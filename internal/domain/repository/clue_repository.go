package repository

import (
	"context"

	"novel-assistant-api/internal/domain/entity"
)

// ClueRepository 伏笔仓储接口
type ClueRepository interface {
	Create(ctx context.Context, clue *entity.Clue) error
	CreateBatch(ctx context.Context, clues []*entity.Clue) error
	GetByID(ctx context.Context, id int64) (*entity.Clue, error)
	Update(ctx context.Context, clue *entity.Clue) error
	Delete(ctx context.Context, id int64) error

	// ListByProject 按 ID 倒序，status 为空时不过滤
	ListByProject(ctx context.Context, projectID int64, status entity.ClueStatus) ([]*entity.Clue, error)
}
