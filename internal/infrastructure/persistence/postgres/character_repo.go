package postgres

import (
	"context"
	"fmt"

	"novel-assistant-api/internal/domain/entity"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

// CharacterRepository 角色仓储实现
type CharacterRepository struct {
	client *Client
}

// NewCharacterRepository 创建角色仓储
func NewCharacterRepository(client *Client) *CharacterRepository {
	return &CharacterRepository{client: client}
}

// Create 创建角色
func (r *CharacterRepository) Create(ctx context.Context, character *entity.Character) error {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.Create")
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(character).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to create character", err)
	}
	return nil
}

// GetByID 根据 ID 获取角色
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*entity.Character, error) {
	return firstByID[entity.Character](ctx, r.client.db, "postgres.CharacterRepository.GetByID", id)
}

// Update 更新角色
func (r *CharacterRepository) Update(ctx context.Context, character *entity.Character) error {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.Update")
	defer span.End()

	err := getDB(ctx, r.client.db).
		Model(character).
		Select("name", "role", "description", "traits", "arc").
		Updates(character).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return writeError("failed to update character", err)
	}
	return nil
}

// Delete 删除角色
func (r *CharacterRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID[entity.Character](ctx, r.client.db, "postgres.CharacterRepository.Delete", id)
}

// ListByProject 获取项目角色列表
func (r *CharacterRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.Character, error) {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.ListByProject")
	defer span.End()

	var characters []*entity.Character
	err := getDB(ctx, r.client.db).
		Where("project_id = ?", projectID).
		Order("id DESC").
		Find(&characters).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

// FindByNames 按名字查找项目内角色
func (r *CharacterRepository) FindByNames(ctx context.Context, projectID int64, names []string) ([]*entity.Character, error) {
	if len(names) == 0 {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.FindByNames")
	defer span.End()

	var characters []*entity.Character
	err := getDB(ctx, r.client.db).
		Where("project_id = ? AND name IN ?", projectID, names).
		Order("id ASC").
		Find(&characters).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to find characters by names: %w", err)
	}
	return characters, nil
}
