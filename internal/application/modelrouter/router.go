package modelrouter

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"novel-assistant-api/pkg/logger"
	"novel-assistant-api/pkg/metrics"
	"novel-assistant-api/pkg/tracer"

	"go.opentelemetry.io/otel/attribute"
)

// binding 模型与适配器在构造时完成绑定，adapter 为 nil 表示提供商未实现
type binding struct {
	spec    ModelSpec
	adapter Adapter
}

// Router 模型路由器，构造后只读，可被并发请求共享
type Router struct {
	registry *Registry
	tables   Tables
	bindings map[string]binding
}

// NewRouter 创建路由器
func NewRouter(registry *Registry, tables Tables, adapters map[Provider]Adapter) (*Router, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, fmt.Errorf("model registry is empty")
	}
	if err := tables.validate(registry); err != nil {
		return nil, err
	}

	bindings := make(map[string]binding, registry.Len())
	for _, spec := range registry.Specs() {
		bindings[spec.Name] = binding{spec: spec, adapter: adapters[spec.Provider]}
	}

	return &Router{
		registry: registry,
		tables:   tables.clone(),
		bindings: bindings,
	}, nil
}

// Registry 返回模型注册表
func (r *Router) Registry() *Registry {
	return r.registry
}

// PrimaryFallback 返回主回退模型
func (r *Router) PrimaryFallback() string {
	return r.tables.PrimaryFallback
}

// SelectModels 解析有序候选模型列表
func (r *Router) SelectModels(task, strategy string, preferred []string) []string {
	if len(preferred) > 0 {
		out := make([]string, 0, len(preferred))
		for _, m := range preferred {
			if r.registry.Has(m) {
				out = append(out, m)
			}
		}
		return out
	}

	strat, ok := r.tables.Strategies[strategy]
	if strategy == "" || !ok {
		strat = r.tables.Strategies[r.tables.DefaultStrategy]
	}

	var base []string
	if task != "" && task == r.tables.ShortTask {
		base = append(base, r.tables.Tasks[r.tables.ShortTask]...)
	} else if task != "" {
		base = append(base, r.tables.Tasks[task]...)
	}
	base = append(base, strat...)

	models := r.unique(base)
	if len(models) == 0 {
		return append([]string(nil), r.tables.Strategies[r.tables.DefaultStrategy]...)
	}
	return models
}

// unique 去重并丢弃未注册模型，保留首次出现顺序
func (r *Router) unique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup || !r.registry.Has(n) {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// InvokeModel 调用单个模型
func (r *Router) InvokeModel(ctx context.Context, model string, call Call) (*Result, error) {
	b, ok := r.bindings[model]
	if !ok {
		return nil, errUnknownModel(model)
	}
	if b.adapter == nil {
		return nil, errProviderNotImplemented(b.spec)
	}

	ctx, span := tracer.Start(ctx, "modelrouter.InvokeModel")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", model),
		attribute.String("llm.provider", string(b.spec.Provider)),
	)

	call.Model = model
	text, err := b.adapter.Generate(ctx, call)
	if err != nil {
		tracer.RecordError(span, err)
		metrics.RouterAttemptTotal.WithLabelValues(model, "error").Inc()
		return nil, err
	}
	metrics.RouterAttemptTotal.WithLabelValues(model, "success").Inc()

	return &Result{
		Text:      text,
		ModelUsed: model,
		Provider:  b.spec.Provider,
	}, nil
}

// Generate 编排入口：CompareModels 非空走对比模式，否则按候选顺序调用并回退
func (r *Router) Generate(ctx context.Context, req Request) (*Response, error) {
	if len(req.CompareModels) > 0 {
		return &Response{Slots: r.compare(ctx, req)}, nil
	}
	res, err := r.standard(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Response{Result: res}, nil
}

// GenerateText 标准模式下只取文本
func (r *Router) GenerateText(ctx context.Context, req Request) (string, error) {
	req.CompareModels = nil
	res, err := r.standard(ctx, req)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// candidates 标准模式候选列表，显式模型排首位
func (r *Router) candidates(req Request) []string {
	list := r.SelectModels(req.Task, req.Strategy, req.PreferredModels)
	if req.Model != "" {
		list = r.unique(append([]string{req.Model}, list...))
	}
	return list
}

// outcome 单次候选调用的显式结果
type outcome struct {
	result *Result
	err    error
}

// step 编排循环在一次调用后的去向
type step int

const (
	stepReturn step = iota // 成功，返回结果
	stepNext               // 失败，继续下一个候选
	stepStop               // 失败，终止并返回最近一次错误
)

// nextAction 回退决策：成功即返回；允许回退时失败继续下一个候选，否则立即终止
func nextAction(o outcome, allowFallback bool) step {
	if o.err == nil {
		return stepReturn
	}
	if !allowFallback {
		return stepStop
	}
	return stepNext
}

func (r *Router) standard(ctx context.Context, req Request) (*Result, error) {
	list := r.candidates(req)
	call := req.call()

	var (
		lastErr   error
		lastModel string
	)
	for _, m := range list {
		res, err := r.InvokeModel(ctx, m, call)
		o := outcome{result: res, err: err}

		switch nextAction(o, req.AllowFallback) {
		case stepReturn:
			return o.result, nil
		case stepNext:
			lastErr, lastModel = o.err, m
			metrics.RouterFallbackTotal.WithLabelValues("standard", m).Inc()
			logger.Warn(ctx, "model call failed, trying next candidate", "model", m, "error", o.err)
			continue
		case stepStop:
			lastErr, lastModel = o.err, m
			logger.Warn(ctx, "model call failed, giving up", "model", m, "error", o.err)
		}
		break
	}

	if lastErr == nil {
		return nil, errNoCandidates()
	}
	return nil, terminalError(lastModel, lastErr)
}

// terminalError 路由层错误原样返回，提供商错误包一层模型名并保留原因
func terminalError(model string, err error) error {
	if errors.Is(err, ErrModelUnavailable) {
		return err
	}
	return fmt.Errorf("model %s failed: %w", model, err)
}

// compare 每个请求模型一个位置，并发执行，结果保持请求顺序
func (r *Router) compare(ctx context.Context, req Request) []Slot {
	call := req.call()
	slots := make([]Slot, len(req.CompareModels))

	var g errgroup.Group
	for i, m := range req.CompareModels {
		g.Go(func() error {
			slots[i] = r.compareSlot(ctx, m, call, req.AllowFallback)
			return nil
		})
	}
	_ = g.Wait()

	return slots
}

func (r *Router) compareSlot(ctx context.Context, model string, call Call, allowFallback bool) Slot {
	res, err := r.InvokeModel(ctx, model, call)
	if err == nil {
		return Slot{Model: model, Result: res}
	}

	primary := r.tables.PrimaryFallback
	if allowFallback && primary != "" && model != primary {
		metrics.RouterFallbackTotal.WithLabelValues("compare", model).Inc()
		fb, fbErr := r.InvokeModel(ctx, primary, call)
		if fbErr == nil {
			fb.FromFallback = true
			return Slot{Model: model, Result: fb}
		}
		logger.Warn(ctx, "compare fallback failed", "model", model, "fallback", primary, "error", fbErr)
	}

	return Slot{Model: model, Err: err}
}
