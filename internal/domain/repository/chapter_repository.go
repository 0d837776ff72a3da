package repository

import (
	"context"

	"novel-assistant-api/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// Create 创建章节
	Create(ctx context.Context, chapter *entity.Chapter) error

	// GetByID 根据 ID 获取章节，不存在返回 nil, nil
	GetByID(ctx context.Context, id int64) (*entity.Chapter, error)

	// Update 更新章节
	Update(ctx context.Context, chapter *entity.Chapter) error

	// Delete 删除章节
	Delete(ctx context.Context, id int64) error

	// ListByProject 按 index、id 升序
	ListByProject(ctx context.Context, projectID int64) ([]*entity.Chapter, error)

	// NextIndex 项目内追加位置：现有最大 index + 1，没有记录时为 0
	NextIndex(ctx context.Context, projectID int64) (int, error)

	// ReplaceCharacters 以给定角色集合覆盖章节出场关联
	ReplaceCharacters(ctx context.Context, chapterID int64, characterIDs []int64) error

	// ListCharacters 章节出场角色
	ListCharacters(ctx context.Context, chapterID int64) ([]*entity.Character, error)
}
