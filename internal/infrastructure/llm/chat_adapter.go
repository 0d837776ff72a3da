package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/domain/service"
)

// chatModelSource ChatModel 来源，生产中为 ChatModelFactory
type chatModelSource interface {
	Get(ctx context.Context, provider, modelName string) (model.BaseChatModel, error)
	APIKey(provider string) string
}

// ChatAdapter OpenAI 兼容协议的适配器，OpenAI 与 Grok 共用
type ChatAdapter struct {
	provider     modelrouter.Provider
	keyEnv       string
	source       chatModelSource
	limiter      *rate.Limiter
	systemPrompt func(call modelrouter.Call) string
}

// NewOpenAIAdapter 创建 OpenAI 适配器
func NewOpenAIAdapter(f *ChatModelFactory, cfg *config.LLMConfig) *ChatAdapter {
	return &ChatAdapter{
		provider: modelrouter.ProviderOpenAI,
		keyEnv:   "OPENAI_API_KEY",
		source:   f,
		limiter:  newLimiter(cfg.Providers[string(modelrouter.ProviderOpenAI)]),
		systemPrompt: func(call modelrouter.Call) string {
			return openAISystemPrompt(call.SystemPrompt, call.Role, call.Mode)
		},
	}
}

// NewGrokAdapter 创建 xAI Grok 适配器，走 OpenAI 兼容端点
func NewGrokAdapter(f *ChatModelFactory, cfg *config.LLMConfig) *ChatAdapter {
	return &ChatAdapter{
		provider: modelrouter.ProviderGrok,
		keyEnv:   "XAI_API_KEY",
		source:   f,
		limiter:  newLimiter(cfg.Providers[string(modelrouter.ProviderGrok)]),
		systemPrompt: func(call modelrouter.Call) string {
			return grokSystemPrompt(call.SystemPrompt)
		},
	}
}

// Generate 实现 modelrouter.Adapter
func (a *ChatAdapter) Generate(ctx context.Context, call modelrouter.Call) (string, error) {
	if a.source.APIKey(string(a.provider)) == "" {
		return "", modelrouter.CredentialsMissing(a.provider, a.keyEnv)
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%s rate limiter: %w", a.provider, err)
	}

	cm, err := a.source.Get(ctx, string(a.provider), call.Model)
	if err != nil {
		return "", err
	}

	ctx = service.WithModel(service.WithProvider(ctx, string(a.provider)), call.Model)
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      call.Model,
		Type:      string(a.provider),
		Component: components.ComponentOfChatModel,
	})

	opts := []model.Option{model.WithTemperature(call.Temperature)}
	if call.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(call.MaxTokens))
	}

	msg, err := cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(a.systemPrompt(call)),
		schema.UserMessage(call.Prompt),
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", a.provider, err)
	}
	if msg == nil {
		return "", nil
	}
	return msg.Content, nil
}
