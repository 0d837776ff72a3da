// Package callback 注册 Eino 全局回调，为模型与向量化调用记录指标和链路
package callback

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"novel-assistant-api/internal/domain/service"
	"novel-assistant-api/pkg/metrics"
)

type startTimeKey struct{}

func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			modelName := modelNameFromInput(input, info)
			return startSpan(ctx, "llm.generate", info,
				attribute.String("llm.operation", service.OperationFromContext(ctx)),
				attribute.String("llm.provider", providerOf(ctx, info)),
				attribute.String("llm.model", modelName),
			)
		},

		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			provider := providerOf(ctx, info)
			modelName := modelNameFromOutput(ctx, output, info)

			observe(ctx, provider, modelName, "success")

			if output != nil && output.TokenUsage != nil {
				metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "prompt").Add(float64(output.TokenUsage.PromptTokens))
				metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "completion").Add(float64(output.TokenUsage.CompletionTokens))
				trace.SpanFromContext(ctx).SetAttributes(
					attribute.Int("llm.prompt_tokens", output.TokenUsage.PromptTokens),
					attribute.Int("llm.completion_tokens", output.TokenUsage.CompletionTokens),
				)
			}

			trace.SpanFromContext(ctx).End()
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			observe(ctx, providerOf(ctx, info), modelFallback(ctx, info), "error")
			endWithError(ctx, err)
			return ctx
		},
	}
}

func newEmbeddingCallbackHandler() *cbtemplate.EmbeddingCallbackHandler {
	return &cbtemplate.EmbeddingCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *embedding.CallbackInput) context.Context {
			texts := 0
			if input != nil {
				texts = len(input.Texts)
			}
			return startSpan(ctx, "embedding.embed", info,
				attribute.String("llm.provider", providerOf(ctx, info)),
				attribute.Int("embedding.texts", texts),
			)
		},

		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *embedding.CallbackOutput) context.Context {
			provider := providerOf(ctx, info)
			modelName := modelFallback(ctx, info)
			if output != nil && output.Config != nil && output.Config.Model != "" {
				modelName = output.Config.Model
			}

			observe(ctx, provider, modelName, "success")
			if output != nil && output.TokenUsage != nil {
				metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "embedding").Add(float64(output.TokenUsage.PromptTokens))
			}

			trace.SpanFromContext(ctx).End()
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			observe(ctx, providerOf(ctx, info), modelFallback(ctx, info), "error")
			endWithError(ctx, err)
			return ctx
		},
	}
}

func startSpan(ctx context.Context, name string, info *einocb.RunInfo, attrs ...attribute.KeyValue) context.Context {
	ctx = context.WithValue(ctx, startTimeKey{}, time.Now())
	if info != nil {
		attrs = append(attrs,
			attribute.String("eino.name", info.Name),
			attribute.String("eino.type", info.Type),
		)
	}
	ctx, _ = otel.Tracer("eino").Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx
}

func endWithError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func observe(ctx context.Context, provider, modelName, status string) {
	metrics.LLMCallTotal.WithLabelValues(provider, modelName, status).Inc()
	if d := elapsedSeconds(ctx); d > 0 {
		metrics.LLMCallDuration.WithLabelValues(provider, modelName).Observe(d)
	}
}

func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

// providerOf 优先取适配器写入 context 的提供商，其次取 RunInfo.Type
func providerOf(ctx context.Context, info *einocb.RunInfo) string {
	if p := service.ProviderFromContext(ctx); p != "unknown" {
		return p
	}
	if info != nil && info.Type != "" {
		return info.Type
	}
	return "unknown"
}

func modelFallback(ctx context.Context, info *einocb.RunInfo) string {
	if m := service.ModelFromContext(ctx); m != "" {
		return m
	}
	if info != nil {
		return info.Name
	}
	return ""
}

func modelNameFromInput(in *model.CallbackInput, info *einocb.RunInfo) string {
	if in != nil && in.Config != nil && in.Config.Model != "" {
		return in.Config.Model
	}
	if info != nil {
		return info.Name
	}
	return ""
}

func modelNameFromOutput(ctx context.Context, out *model.CallbackOutput, info *einocb.RunInfo) string {
	if out != nil && out.Config != nil && out.Config.Model != "" {
		return out.Config.Model
	}
	return modelFallback(ctx, info)
}
