package llm

import "strings"

// RoleSystemPrompts OpenAI 适配器按角色选择的系统提示
var RoleSystemPrompts = map[string]string{
	"default":          "You are a helpful writing assistant.",
	"world_consultant": "You are a worldbuilding consultant. Provide concise, coherent setting advice.",
	"plot_coach":       "You are a story coach. Provide concise plot development suggestions.",
	"style_polish":     "You are a line editor. Polish text while keeping meaning.",
}

// grokDefaultSystemPrompt Grok 未指定系统提示时使用
const grokDefaultSystemPrompt = "You are a creative writing assistant."

// openAISystemPrompt 覆盖值优先，其次角色表，最后默认角色；mode 作为前缀
func openAISystemPrompt(override, role, mode string) string {
	sys := override
	if sys == "" {
		sys = RoleSystemPrompts[role]
	}
	if sys == "" {
		sys = RoleSystemPrompts["default"]
	}
	if mode != "" {
		sys = "Mode: " + mode + ". " + sys
	}
	return sys
}

func grokSystemPrompt(override string) string {
	if override != "" {
		return override
	}
	return grokDefaultSystemPrompt
}

// geminiPrompt Gemini 不单独传系统提示，直接拼接在用户提示之前
func geminiPrompt(system, prompt string) string {
	if strings.TrimSpace(system) == "" {
		return prompt
	}
	return system + "\n\n" + prompt
}
