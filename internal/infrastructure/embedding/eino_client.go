package embedding

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/embedding"

	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/domain/service"
)

const (
	ProviderOpenAI = "openai"
	ProviderHTTP   = "http"
)

// NewEinoEmbedder 按配置创建 Embedder，并接入全局回调
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	var (
		inner embedding.Embedder
		err   error
	)

	switch cfg.Provider {
	case "", ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedding api key is required")
		}
		inner, err = openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create eino embedder: %w", err)
		}
	case ProviderHTTP:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("embedding base_url is required for http provider")
		}
		inner = NewHTTPClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}
	return &tracedEmbedder{inner: inner, provider: provider, model: cfg.Model}, nil
}

// tracedEmbedder 在组件外部调用时初始化回调上下文
type tracedEmbedder struct {
	inner    embedding.Embedder
	provider string
	model    string
}

func (e *tracedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	ctx = service.WithOperation(ctx, "embedding")
	ctx = service.WithProvider(ctx, e.provider)
	ctx = service.WithModel(ctx, e.model)
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      e.model,
		Type:      e.provider,
		Component: components.ComponentOfEmbedding,
	})

	// 自建服务不会自行触发回调
	if _, ok := e.inner.(*HTTPClient); ok {
		ctx = callbacks.OnStart(ctx, &embedding.CallbackInput{Texts: texts})
		vectors, err := e.inner.EmbedStrings(ctx, texts, opts...)
		if err != nil {
			callbacks.OnError(ctx, err)
			return nil, err
		}
		callbacks.OnEnd(ctx, &embedding.CallbackOutput{
			Embeddings: vectors,
			Config:     &embedding.Config{Model: e.model},
		})
		return vectors, nil
	}

	return e.inner.EmbedStrings(ctx, texts, opts...)
}

// Model 返回模型名，用于缓存键
func (e *tracedEmbedder) Model() string {
	return e.model
}
