package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/interfaces/http/dto"
	"novel-assistant-api/pkg/errors"
	"novel-assistant-api/pkg/logger"
)

// loadByID 解析路径参数并加载资源；失败时已写出响应，调用方直接返回
func loadByID[T any](c *gin.Context, param, kind string, notFound *errors.AppError, get func(context.Context, int64) (*T, error)) (*T, bool) {
	id, ok := dto.BindID(c, param)
	if !ok {
		return nil, false
	}

	ctx := c.Request.Context()
	v, err := get(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to get "+kind, err, "id", id)
		dto.AppError(c, storeError(err, "failed to get "+kind))
		return nil, false
	}
	if v == nil {
		dto.NotFound(c, notFound.Message)
		return nil, false
	}
	return v, true
}

func loadProject(c *gin.Context, repo repository.ProjectRepository) (*entity.Project, bool) {
	return loadByID(c, "pid", "project", errors.ErrProjectNotFound, repo.GetByID)
}

func loadChapter(c *gin.Context, repo repository.ChapterRepository) (*entity.Chapter, bool) {
	return loadByID(c, "cid", "chapter", errors.ErrChapterNotFound, repo.GetByID)
}

func loadVolume(c *gin.Context, repo repository.VolumeRepository) (*entity.Volume, bool) {
	return loadByID(c, "vid", "volume", errors.ErrVolumeNotFound, repo.GetByID)
}

func loadCharacter(c *gin.Context, repo repository.CharacterRepository) (*entity.Character, bool) {
	return loadByID(c, "id", "character", errors.ErrCharacterNotFound, repo.GetByID)
}

func loadWorldElement(c *gin.Context, repo repository.WorldElementRepository) (*entity.WorldElement, bool) {
	return loadByID(c, "id", "world element", errors.ErrWorldElementNotFound, repo.GetByID)
}

func loadClue(c *gin.Context, repo repository.ClueRepository) (*entity.Clue, bool) {
	return loadByID(c, "id", "clue", errors.ErrClueNotFound, repo.GetByID)
}
