// Package modelrouter 负责按任务、策略或显式偏好选择模型，并在调用失败时回退
package modelrouter

import (
	"fmt"
	"sort"
	"strings"
)

// Provider 模型提供商，封闭集合
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderGrok   Provider = "grok"
)

// Providers 返回全部已知提供商
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderGemini, ProviderGrok}
}

// ParseProvider 解析提供商标识
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProviderOpenAI, ProviderGemini, ProviderGrok:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q", s)
	}
}

// Tier 能力档位
type Tier string

const (
	TierStrong Tier = "strong"
	TierFast   Tier = "fast"
	TierCheap  Tier = "cheap"
)

// Price 每百万 token 的美元价格
type Price struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// ModelSpec 模型描述，注册后不可变
type ModelSpec struct {
	Name       string   `json:"name"`
	Provider   Provider `json:"provider"`
	Tier       Tier     `json:"tier"`
	Roles      []string `json:"roles"`
	MaxContext int      `json:"max_context,omitempty"`
	Price      *Price   `json:"price,omitempty"`
}

// HasRole 判断模型是否带有指定角色标签
func (s ModelSpec) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Registry 以模型名为键的只读注册表
type Registry struct {
	specs map[string]ModelSpec
}

// NewRegistry 创建注册表，模型名必须唯一且提供商合法
func NewRegistry(specs ...ModelSpec) (*Registry, error) {
	m := make(map[string]ModelSpec, len(specs))
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("model name is required")
		}
		if _, err := ParseProvider(string(s.Provider)); err != nil {
			return nil, fmt.Errorf("model %s: %w", s.Name, err)
		}
		if _, dup := m[s.Name]; dup {
			return nil, fmt.Errorf("duplicate model %q", s.Name)
		}
		s.Roles = append([]string(nil), s.Roles...)
		if s.Price != nil {
			p := *s.Price
			s.Price = &p
		}
		m[s.Name] = s
	}
	return &Registry{specs: m}, nil
}

// Get 按名称查找模型
func (r *Registry) Get(name string) (ModelSpec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Has 判断模型是否已注册
func (r *Registry) Has(name string) bool {
	_, ok := r.specs[name]
	return ok
}

// Len 注册模型数量
func (r *Registry) Len() int {
	return len(r.specs)
}

// Specs 按名称排序返回全部模型
func (r *Registry) Specs() []ModelSpec {
	out := make([]ModelSpec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
