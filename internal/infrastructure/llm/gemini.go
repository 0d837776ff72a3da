package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/config"
	"novel-assistant-api/pkg/metrics"
	"novel-assistant-api/pkg/tracer"
)

const geminiProvider = string(modelrouter.ProviderGemini)

// GeminiAdapter Google Gemini 适配器
type GeminiAdapter struct {
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiAdapter 创建 Gemini 适配器，客户端在首次调用时建立
func NewGeminiAdapter(cfg *config.LLMConfig) *GeminiAdapter {
	pc := cfg.Providers[geminiProvider]
	return &GeminiAdapter{
		apiKey:  pc.APIKey,
		timeout: pc.Timeout,
		limiter: newLimiter(pc),
	}
}

func (a *GeminiAdapter) getClient(ctx context.Context) (*genai.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	a.client = client
	return client, nil
}

// Generate 实现 modelrouter.Adapter
func (a *GeminiAdapter) Generate(ctx context.Context, call modelrouter.Call) (string, error) {
	if a.apiKey == "" {
		return "", modelrouter.CredentialsMissing(modelrouter.ProviderGemini, "GEMINI_API_KEY")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gemini rate limiter: %w", err)
	}

	client, err := a.getClient(ctx)
	if err != nil {
		return "", err
	}

	ctx, span := tracer.Start(ctx, "llm.gemini.generate")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", call.Model))

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	gm := client.GenerativeModel(call.Model)
	gm.SetTemperature(call.Temperature)
	if call.MaxTokens > 0 {
		gm.SetMaxOutputTokens(int32(call.MaxTokens))
	}

	start := time.Now()
	resp, err := gm.GenerateContent(ctx, genai.Text(geminiPrompt(call.SystemPrompt, call.Prompt)))
	metrics.LLMCallDuration.WithLabelValues(geminiProvider, call.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		tracer.RecordError(span, err)
		metrics.LLMCallTotal.WithLabelValues(geminiProvider, call.Model, "error").Inc()
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	metrics.LLMCallTotal.WithLabelValues(geminiProvider, call.Model, "success").Inc()

	if u := resp.UsageMetadata; u != nil {
		metrics.LLMTokensUsed.WithLabelValues(geminiProvider, call.Model, "prompt").Add(float64(u.PromptTokenCount))
		metrics.LLMTokensUsed.WithLabelValues(geminiProvider, call.Model, "completion").Add(float64(u.CandidatesTokenCount))
		span.SetAttributes(
			attribute.Int("llm.prompt_tokens", int(u.PromptTokenCount)),
			attribute.Int("llm.completion_tokens", int(u.CandidatesTokenCount)),
		)
	}

	return extractGeminiText(resp), nil
}

// Close 释放底层客户端
func (a *GeminiAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}

// extractGeminiText 拼接首个候选中的全部文本片段
func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}
