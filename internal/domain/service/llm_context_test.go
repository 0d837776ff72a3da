package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLLMContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", OperationFromContext(ctx))
	assert.Equal(t, "unknown", ProviderFromContext(ctx))
	assert.Empty(t, ModelFromContext(ctx))

	ctx = WithOperation(ctx, " analyze_chapter ")
	ctx = WithProvider(ctx, "grok")
	ctx = WithModel(ctx, "grok-4.1")
	ctx = WithProvider(ctx, "   ")

	assert.Equal(t, "analyze_chapter", OperationFromContext(ctx))
	assert.Equal(t, "grok", ProviderFromContext(ctx))
	assert.Equal(t, "grok-4.1", ModelFromContext(ctx))
}
