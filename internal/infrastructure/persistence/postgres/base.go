package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"novel-assistant-api/internal/domain/repository"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

// firstByID 按主键查询，不存在返回 nil, nil
func firstByID[T any](ctx context.Context, db *gorm.DB, op string, id int64) (*T, error) {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	var out T
	err := getDB(ctx, db).First(&out, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &out, nil
}

// deleteByID 按主键删除
func deleteByID[T any](ctx context.Context, db *gorm.DB, op string, id int64) error {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	var model T
	if err := getDB(ctx, db).Delete(&model, id).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// writeError 唯一约束冲突翻译为 repository.ErrDuplicate，其余保留原因
func writeError(msg string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", msg, repository.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
