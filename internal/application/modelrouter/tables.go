package modelrouter

import "fmt"

// Tables 任务与策略的默认模型偏好表，顺序即优先级
type Tables struct {
	Tasks           map[string][]string
	Strategies      map[string][]string
	ShortTask       string
	DefaultStrategy string
	PrimaryFallback string
}

// validate 默认策略必须存在且至少引用一个已注册模型
func (t Tables) validate(reg *Registry) error {
	def, ok := t.Strategies[t.DefaultStrategy]
	if !ok || len(def) == 0 {
		return fmt.Errorf("default strategy %q is missing or empty", t.DefaultStrategy)
	}
	known := 0
	for _, m := range def {
		if reg.Has(m) {
			known++
		}
	}
	if known == 0 {
		return fmt.Errorf("default strategy %q references no registered model", t.DefaultStrategy)
	}
	if t.PrimaryFallback != "" && !reg.Has(t.PrimaryFallback) {
		return fmt.Errorf("primary fallback %q is not registered", t.PrimaryFallback)
	}
	return nil
}

// clone 深拷贝，避免调用方修改已交给路由器的表
func (t Tables) clone() Tables {
	cp := t
	cp.Tasks = cloneLists(t.Tasks)
	cp.Strategies = cloneLists(t.Strategies)
	return cp
}

func cloneLists(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}
