// Package llm 提供各模型提供商的适配器实现
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"novel-assistant-api/internal/config"
)

// ChatModelFactory 按 provider/model 惰性创建并缓存 Eino ChatModel
type ChatModelFactory struct {
	providers map[string]config.ProviderConfig
	models    map[string]model.BaseChatModel
	mu        sync.RWMutex
}

// NewChatModelFactory 创建 ChatModel 工厂
func NewChatModelFactory(cfg *config.LLMConfig) *ChatModelFactory {
	return &ChatModelFactory{
		providers: cfg.Providers,
		models:    make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定提供商下某个模型的 ChatModel（OpenAI 兼容协议）
func (f *ChatModelFactory) Get(ctx context.Context, provider, modelName string) (model.BaseChatModel, error) {
	key := provider + "/" + modelName

	f.mu.RLock()
	m, ok := f.models[key]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok = f.models[key]; ok {
		return m, nil
	}

	pc := f.providers[provider]
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  pc.APIKey,
		BaseURL: pc.BaseURL,
		Model:   modelName,
		Timeout: pc.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", key, err)
	}

	f.models[key] = chatModel
	return chatModel, nil
}

// APIKey 返回提供商配置的密钥
func (f *ChatModelFactory) APIKey(provider string) string {
	return f.providers[provider].APIKey
}
