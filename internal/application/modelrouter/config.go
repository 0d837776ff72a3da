package modelrouter

import (
	"fmt"

	"novel-assistant-api/internal/config"
)

// FromConfig 由配置构建注册表与偏好表，未配置的部分使用内置默认
func FromConfig(cfg config.LLMConfig) (*Registry, Tables, error) {
	specs := DefaultModels()
	if len(cfg.Models) > 0 {
		specs = make([]ModelSpec, 0, len(cfg.Models))
		for _, mc := range cfg.Models {
			p, err := ParseProvider(mc.Provider)
			if err != nil {
				return nil, Tables{}, fmt.Errorf("model %s: %w", mc.Name, err)
			}
			spec := ModelSpec{
				Name:       mc.Name,
				Provider:   p,
				Tier:       Tier(mc.Tier),
				Roles:      mc.Roles,
				MaxContext: mc.MaxContext,
			}
			if mc.PriceInput > 0 || mc.PriceOutput > 0 {
				spec.Price = &Price{Input: mc.PriceInput, Output: mc.PriceOutput}
			}
			specs = append(specs, spec)
		}
	}

	reg, err := NewRegistry(specs...)
	if err != nil {
		return nil, Tables{}, err
	}

	tables := DefaultTables()
	rc := cfg.Routing
	if len(rc.Tasks) > 0 {
		tables.Tasks = rc.Tasks
	}
	if len(rc.Strategies) > 0 {
		tables.Strategies = rc.Strategies
	}
	if rc.PrimaryFallback != "" {
		tables.PrimaryFallback = rc.PrimaryFallback
	}
	if rc.ShortTask != "" {
		tables.ShortTask = rc.ShortTask
	}
	if rc.DefaultStrategy != "" {
		tables.DefaultStrategy = rc.DefaultStrategy
	}
	if err := tables.validate(reg); err != nil {
		return nil, Tables{}, err
	}

	return reg, tables, nil
}
