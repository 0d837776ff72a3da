package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"novel-assistant-api/internal/domain/entity"
	"novel-assistant-api/internal/domain/repository"
)

func TestParseGormLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logger.LogLevel
	}{
		{"silent", logger.Silent},
		{"error", logger.Error},
		{"info", logger.Info},
		{"warn", logger.Warn},
		{"", logger.Warn},
		{"verbose", logger.Warn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseGormLogLevel(tt.in))
		})
	}
}

func TestModels_ParentsBeforeChildren(t *testing.T) {
	models := Models()
	require.Len(t, models, 7)

	pos := map[string]int{}
	for i, m := range models {
		switch m.(type) {
		case *entity.Project:
			pos["project"] = i
		case *entity.Chapter:
			pos["chapter"] = i
		case *entity.Character:
			pos["character"] = i
		case *entity.ChapterCharacter:
			pos["link"] = i
		case *entity.Clue:
			pos["clue"] = i
		}
	}
	assert.Equal(t, 0, pos["project"])
	assert.Less(t, pos["chapter"], pos["link"])
	assert.Less(t, pos["character"], pos["link"])
	assert.Less(t, pos["chapter"], pos["clue"])
}

func TestGetTxFromContext(t *testing.T) {
	assert.Nil(t, getTxFromContext(context.Background()))

	tx := &gorm.DB{Config: &gorm.Config{}}
	ctx := context.WithValue(context.Background(), repository.TxKey{}, tx)
	assert.Same(t, tx, getTxFromContext(ctx))

	ctx = context.WithValue(context.Background(), repository.TxKey{}, "not a tx")
	assert.Nil(t, getTxFromContext(ctx))
}

func TestWriteError(t *testing.T) {
	dup := writeError("failed to create volume", gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, dup, repository.ErrDuplicate)
	assert.EqualError(t, dup, "failed to create volume: duplicate record")

	cause := errors.New("connection reset")
	other := writeError("failed to update clue", cause)
	assert.ErrorIs(t, other, cause)
	assert.NotErrorIs(t, other, repository.ErrDuplicate)
}
