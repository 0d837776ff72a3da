// Package service 定义跨层共享的 LLM 调用上下文
package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyOperation llmCtxKey = "llm_operation"
	llmCtxKeyProvider  llmCtxKey = "llm_provider"
	llmCtxKeyModel     llmCtxKey = "llm_model"
)

const unknown = "unknown"

// WithOperation 标记当前调用所属的业务操作（expand、analyze_chapter 等）
func WithOperation(ctx context.Context, op string) context.Context {
	return withValue(ctx, llmCtxKeyOperation, op)
}

// WithProvider 标记当前调用的提供商
func WithProvider(ctx context.Context, provider string) context.Context {
	return withValue(ctx, llmCtxKeyProvider, provider)
}

// WithModel 标记当前调用的模型
func WithModel(ctx context.Context, model string) context.Context {
	return withValue(ctx, llmCtxKeyModel, model)
}

// OperationFromContext 读取业务操作，缺省为 unknown
func OperationFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyOperation, unknown)
}

// ProviderFromContext 读取提供商，缺省为 unknown
func ProviderFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyProvider, unknown)
}

// ModelFromContext 读取模型名，缺省为空
func ModelFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyModel, "")
}

func withValue(ctx context.Context, key llmCtxKey, v string) context.Context {
	v = strings.TrimSpace(v)
	if ctx == nil || v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueOr(ctx context.Context, key llmCtxKey, def string) string {
	if ctx == nil {
		return def
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
