package modelrouter

// 内置路由默认值
const (
	DefaultPrimaryFallback = "gpt-5.1"
	DefaultShortTask       = "short"
	DefaultStrategyName    = "default"
	DefaultTemperature     = float32(0.7)
)

// DefaultModels 内置模型注册项
func DefaultModels() []ModelSpec {
	return []ModelSpec{
		{
			Name:       "gpt-5.1",
			Provider:   ProviderOpenAI,
			Tier:       TierStrong,
			Roles:      []string{"default", "draft", "rewrite", "quality", "outline", "chapter"},
			MaxContext: 196_000,
			Price:      &Price{Input: 1.25, Output: 10.0},
		},
		{
			Name:       "gpt-5-mini",
			Provider:   ProviderOpenAI,
			Tier:       TierCheap,
			Roles:      []string{"short", "classify", "tag", "outline", "blurb"},
			MaxContext: 128_000,
			Price:      &Price{Input: 0.25, Output: 2.0},
		},
		{
			Name:       "gemini-3.0-pro",
			Provider:   ProviderGemini,
			Tier:       TierStrong,
			Roles:      []string{"analysis", "multimodal", "long"},
			MaxContext: 2_000_000,
			Price:      &Price{Input: 2.0, Output: 12.0},
		},
		{
			Name:       "gemini-1.5-flash",
			Provider:   ProviderGemini,
			Tier:       TierFast,
			Roles:      []string{"short", "classify", "outline"},
			MaxContext: 1_000_000,
		},
		{
			Name:       "grok-4.1",
			Provider:   ProviderGrok,
			Tier:       TierStrong,
			Roles:      []string{"creative", "dialogue", "style"},
			MaxContext: 2_000_000,
			Price:      &Price{Input: 3.0, Output: 15.0},
		},
		{
			Name:       "grok-2-mini",
			Provider:   ProviderGrok,
			Tier:       TierFast,
			Roles:      []string{"short", "chat"},
			MaxContext: 512_000,
		},
	}
}

// DefaultTables 内置任务与策略偏好
func DefaultTables() Tables {
	return Tables{
		Tasks: map[string][]string{
			"outline":   {"gpt-5-mini", "gpt-5.1", "gemini-3.0-pro"},
			"short":     {"gpt-5-mini", "gemini-1.5-flash", "gpt-5.1"},
			"draft":     {"gpt-5-mini", "gpt-5.1", "gemini-3.0-pro"},
			"chapter":   {"gpt-5.1", "gemini-3.0-pro"},
			"rewrite":   {"gpt-5.1", "grok-4.1"},
			"polish":    {"gpt-5.1", "grok-4.1"},
			"quality":   {"gpt-5.1", "gemini-3.0-pro"},
			"world":     {"gemini-3.0-pro", "gpt-5.1"},
			"lore":      {"gemini-3.0-pro", "gpt-5.1"},
			"dialogue":  {"grok-4.1", "gpt-5.1"},
			"emotional": {"grok-4.1", "gpt-5.1"},
			"chat":      {"gpt-5-mini", "gpt-5.1", "grok-4.1"},
		},
		Strategies: map[string][]string{
			"default":      {"gpt-5-mini", "gpt-5.1"},
			"creative":     {"grok-4.1", "gpt-5.1"},
			"grok":         {"grok-4.1", "gpt-5.1"},
			"gemini":       {"gemini-3.0-pro", "gpt-5.1", "gpt-5-mini"},
			"long_context": {"gemini-3.0-pro", "gpt-5.1"},
			"cheap":        {"gpt-5-mini", "gemini-1.5-flash", "gpt-5.1"},
		},
		ShortTask:       DefaultShortTask,
		DefaultStrategy: DefaultStrategyName,
		PrimaryFallback: DefaultPrimaryFallback,
	}
}
