package postgres

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"novel-assistant-api/internal/domain/entity"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

// ChapterRepository 章节仓储实现
type ChapterRepository struct {
	client *Client
}

// NewChapterRepository 创建章节仓储
func NewChapterRepository(client *Client) *ChapterRepository {
	return &ChapterRepository{client: client}
}

// Create 创建章节
func (r *ChapterRepository) Create(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Create",
		trace.WithAttributes(attribute.Int64("project_id", chapter.ProjectID)))
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(chapter).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to create chapter", err)
	}
	return nil
}

// GetByID 根据 ID 获取章节
func (r *ChapterRepository) GetByID(ctx context.Context, id int64) (*entity.Chapter, error) {
	return firstByID[entity.Chapter](ctx, r.client.db, "postgres.ChapterRepository.GetByID", id)
}

// Update 更新章节
func (r *ChapterRepository) Update(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Update",
		trace.WithAttributes(attribute.Int64("chapter_id", chapter.ID)))
	defer span.End()

	err := getDB(ctx, r.client.db).
		Model(chapter).
		Select("volume_id", "title", "content", "summary", "updated_at").
		Updates(chapter).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to update chapter", err)
	}
	return nil
}

// Delete 删除章节
func (r *ChapterRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID[entity.Chapter](ctx, r.client.db, "postgres.ChapterRepository.Delete", id)
}

// ListByProject 获取项目章节列表
func (r *ChapterRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.ListByProject")
	defer span.End()

	var chapters []*entity.Chapter
	err := getDB(ctx, r.client.db).
		Where("project_id = ?", projectID).
		Order(`"index" ASC, id ASC`).
		Find(&chapters).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}

// NextIndex 计算追加位置，删除造成的空洞不会被复用
func (r *ChapterRepository) NextIndex(ctx context.Context, projectID int64) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.NextIndex")
	defer span.End()

	var next int
	err := getDB(ctx, r.client.db).
		Model(&entity.Chapter{}).
		Where("project_id = ?", projectID).
		Select(`COALESCE(MAX("index") + 1, 0)`).
		Scan(&next).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return 0, fmt.Errorf("failed to compute next chapter index: %w", err)
	}
	return next, nil
}

// ReplaceCharacters 清空章节原有关联后写入新关联
func (r *ChapterRepository) ReplaceCharacters(ctx context.Context, chapterID int64, characterIDs []int64) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.ReplaceCharacters",
		trace.WithAttributes(
			attribute.Int64("chapter_id", chapterID),
			attribute.Int("count", len(characterIDs)),
		))
	defer span.End()

	err := getDB(ctx, r.client.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chapter_id = ?", chapterID).Delete(&entity.ChapterCharacter{}).Error; err != nil {
			return err
		}
		if len(characterIDs) == 0 {
			return nil
		}
		links := make([]entity.ChapterCharacter, 0, len(characterIDs))
		for _, id := range characterIDs {
			links = append(links, entity.ChapterCharacter{ChapterID: chapterID, CharacterID: id})
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to replace chapter characters: %w", err)
	}
	return nil
}

// ListCharacters 获取章节出场角色
func (r *ChapterRepository) ListCharacters(ctx context.Context, chapterID int64) ([]*entity.Character, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.ListCharacters")
	defer span.End()

	var characters []*entity.Character
	err := getDB(ctx, r.client.db).
		Joins("JOIN chapter_characters cc ON cc.character_id = characters.id").
		Where("cc.chapter_id = ?", chapterID).
		Order("characters.id ASC").
		Find(&characters).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list chapter characters: %w", err)
	}
	return characters, nil
}
