package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/pkg/logger"
	pkgtracer "novel-assistant-api/pkg/tracer"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		pkgtracer.RecordError(span, err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// IndexPublisher 把索引任务投递到 Redis Stream，由 index-worker 消费
type IndexPublisher struct {
	producer *Producer
}

var _ retrieval.Indexer = (*IndexPublisher)(nil)

// NewIndexPublisher 创建索引任务发布器
func NewIndexPublisher(producer *Producer) *IndexPublisher {
	return &IndexPublisher{producer: producer}
}

// Index 发布索引任务
func (p *IndexPublisher) Index(ctx context.Context, job retrieval.IndexJob) error {
	msg, err := NewIndexMessage(ctx, job)
	if err != nil {
		return err
	}
	if _, err := p.producer.Publish(ctx, StreamRetrievalIndex, msg); err != nil {
		return err
	}
	logger.Debug(ctx, "index job published", "key", job.Key().String())
	return nil
}

// NewIndexMessage 包装索引任务，携带请求与追踪 ID
func NewIndexMessage(ctx context.Context, job retrieval.IndexJob) (*Message, error) {
	msg, err := NewMessage(uuid.NewString(), MessageTypeIndex, job.ProjectID, job)
	if err != nil {
		return nil, fmt.Errorf("failed to build index message: %w", err)
	}
	if reqID, ok := ctx.Value(logger.RequestIDKey).(string); ok && reqID != "" {
		msg.SetMetadata("request_id", reqID)
	}
	if traceID := pkgtracer.TraceID(ctx); traceID != "" {
		msg.SetMetadata("trace_id", traceID)
	}
	return msg, nil
}

// IndexHandler 返回消费索引任务的处理器
func IndexHandler(handle func(ctx context.Context, job retrieval.IndexJob) error) MessageHandler {
	return func(ctx context.Context, msg *Message) error {
		var job retrieval.IndexJob
		if err := msg.UnmarshalPayload(&job); err != nil {
			return fmt.Errorf("failed to decode index job: %w", err)
		}
		return handle(ctx, job)
	}
}
