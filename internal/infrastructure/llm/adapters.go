package llm

import (
	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/config"
)

// Adapters 路由器使用的提供商适配器集合
type Adapters struct {
	OpenAI *ChatAdapter
	Grok   *ChatAdapter
	Gemini *GeminiAdapter
}

// NewAdapters 创建全部提供商适配器
func NewAdapters(cfg *config.Config) *Adapters {
	factory := NewChatModelFactory(&cfg.LLM)
	return &Adapters{
		OpenAI: NewOpenAIAdapter(factory, &cfg.LLM),
		Grok:   NewGrokAdapter(factory, &cfg.LLM),
		Gemini: NewGeminiAdapter(&cfg.LLM),
	}
}

// ByProvider 按提供商映射，供路由器在构造时绑定
func (a *Adapters) ByProvider() map[modelrouter.Provider]modelrouter.Adapter {
	return map[modelrouter.Provider]modelrouter.Adapter{
		modelrouter.ProviderOpenAI: a.OpenAI,
		modelrouter.ProviderGemini: a.Gemini,
		modelrouter.ProviderGrok:   a.Grok,
	}
}

// Close 释放持有连接的适配器
func (a *Adapters) Close() error {
	return a.Gemini.Close()
}
