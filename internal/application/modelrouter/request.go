package modelrouter

import "context"

// Call 传给提供商适配器的单次调用参数
type Call struct {
	Prompt       string
	Mode         string
	SystemPrompt string
	Model        string
	Temperature  float32
	// MaxTokens 为 0 时使用提供商默认值
	MaxTokens int
	Role      string
}

// Adapter 提供商适配器，每个 Provider 一个实现
type Adapter interface {
	Generate(ctx context.Context, call Call) (string, error)
}

// AdapterFunc 便于以函数形式提供适配器
type AdapterFunc func(ctx context.Context, call Call) (string, error)

// Generate 实现 Adapter
func (f AdapterFunc) Generate(ctx context.Context, call Call) (string, error) {
	return f(ctx, call)
}

// Request 一次生成请求
type Request struct {
	Prompt          string
	Task            string
	Strategy        string
	PreferredModels []string
	// CompareModels 非空时进入对比模式
	CompareModels []string
	AllowFallback bool
	Mode          string
	SystemPrompt  string
	// Model 显式指定时排在候选列表最前
	Model string
	// Temperature 为 nil 时使用 DefaultTemperature
	Temperature *float32
	MaxTokens   int
	Role        string
}

func (r Request) call() Call {
	temp := DefaultTemperature
	if r.Temperature != nil {
		temp = *r.Temperature
	}
	return Call{
		Prompt:       r.Prompt,
		Mode:         r.Mode,
		SystemPrompt: r.SystemPrompt,
		Temperature:  temp,
		MaxTokens:    r.MaxTokens,
		Role:         r.Role,
	}
}

// Temperature 构造温度指针
func Temperature(v float32) *float32 {
	return &v
}

// Result 单个模型的生成结果
type Result struct {
	Text         string   `json:"text"`
	ModelUsed    string   `json:"model_used"`
	Provider     Provider `json:"provider"`
	FromFallback bool     `json:"from_fallback"`
}

// Slot 对比模式中的一个位置，Result 与 Err 二选一
type Slot struct {
	Model  string
	Result *Result
	Err    error
}

// slotError 对比模式下失败位置的元数据形态
type slotError struct {
	Error     string `json:"error"`
	ModelUsed string `json:"model_used"`
}

// Response 路由调用产出，对比模式填充 Slots，否则填充 Result
type Response struct {
	Result *Result
	Slots  []Slot
}

// IsCompare 是否为对比模式结果
func (r *Response) IsCompare() bool {
	return r.Slots != nil
}

// Text 标准模式下的生成文本
func (r *Response) Text() string {
	if r.Result == nil {
		return ""
	}
	return r.Result.Text
}

// Render 按 returnMeta 转换为对外形态：
// 标准模式为文本或 *Result，对比模式为逐位置的文本/元数据列表
func (r *Response) Render(returnMeta bool) any {
	if !r.IsCompare() {
		if returnMeta {
			return r.Result
		}
		return r.Text()
	}

	out := make([]any, 0, len(r.Slots))
	for _, s := range r.Slots {
		switch {
		case s.Err != nil && returnMeta:
			out = append(out, slotError{Error: s.Err.Error(), ModelUsed: s.Model})
		case s.Err != nil:
			out = append(out, s.Err.Error())
		case returnMeta:
			out = append(out, s.Result)
		default:
			out = append(out, s.Result.Text)
		}
	}
	return out
}
