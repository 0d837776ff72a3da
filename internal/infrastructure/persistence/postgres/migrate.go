package postgres

import (
	"context"
	"fmt"

	"novel-assistant-api/internal/domain/entity"
)

// Models 参与自动迁移的实体，顺序遵循外键依赖
func Models() []any {
	return []any{
		&entity.Project{},
		&entity.Volume{},
		&entity.Chapter{},
		&entity.Character{},
		&entity.ChapterCharacter{},
		&entity.WorldElement{},
		&entity.Clue{},
	}
}

// Migrate 建表并补齐索引与约束
func (c *Client) Migrate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "postgres.Migrate")
	defer span.End()

	if err := c.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
