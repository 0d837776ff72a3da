package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/config"
	"novel-assistant-api/pkg/logger"
)

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 10 * time.Second, Multiplier: 2}
	tests := []struct {
		retry int
		want  time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},
		{10, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.CalculateBackoff(tt.retry))
		})
	}
}

func TestStreamNames(t *testing.T) {
	assert.Equal(t, "stream:retrieval:index", string(StreamRetrievalIndex))
	assert.Equal(t, "stream:dlq", StreamRetrievalIndex.DLQStream())
	assert.Equal(t, ConsumerGroup("novel-cg-indexer"), ConsumerGroupIndexer.WithPrefix("novel-"))
	assert.Equal(t, ConsumerGroupIndexer, ConsumerGroupIndexer.WithPrefix(""))
}

func TestNewIndexMessage(t *testing.T) {
	ctx := logger.WithContext(context.Background(), logger.RequestIDKey, "req-1")
	job := retrieval.IndexJob{ProjectID: 7, RefType: retrieval.RefTypeChapter, RefID: 3, Content: "雨夜"}

	msg, err := NewIndexMessage(ctx, job)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, MessageTypeIndex, msg.Type)
	assert.Equal(t, int64(7), msg.ProjectID)
	assert.Equal(t, "req-1", msg.GetMetadata("request_id"))
	assert.Empty(t, msg.GetMetadata("trace_id"))

	var got retrieval.IndexJob
	require.NoError(t, msg.UnmarshalPayload(&got))
	assert.Equal(t, job, got)
}

func TestConsumerDispatch(t *testing.T) {
	c := NewConsumer(nil, ConsumerConfig{Stream: StreamRetrievalIndex, Group: ConsumerGroupIndexer})

	var handled []retrieval.IndexJob
	c.RegisterHandler(MessageTypeIndex, IndexHandler(func(_ context.Context, job retrieval.IndexJob) error {
		handled = append(handled, job)
		return nil
	}))

	t.Run("known type", func(t *testing.T) {
		msg, err := NewMessage("1", MessageTypeIndex, 1, retrieval.IndexJob{ProjectID: 1, RefType: "world", RefID: 2})
		require.NoError(t, err)
		require.NoError(t, c.dispatch(context.Background(), msg))
		require.Len(t, handled, 1)
		assert.Equal(t, int64(2), handled[0].RefID)
	})

	t.Run("unknown type", func(t *testing.T) {
		msg, err := NewMessage("2", "other", 1, map[string]string{})
		require.NoError(t, err)
		assert.True(t, errors.Is(c.dispatch(context.Background(), msg), errNoHandler))
	})

	t.Run("bad payload", func(t *testing.T) {
		msg := &Message{ID: "3", Type: MessageTypeIndex, Payload: []byte(`"not an object"`)}
		assert.Error(t, c.dispatch(context.Background(), msg))
	})
}

func TestNewConsumerDefaults(t *testing.T) {
	c := NewConsumer(nil, ConsumerConfig{})
	assert.Equal(t, 5*time.Second, c.blockTimeout)
	assert.Equal(t, 30*time.Second, c.claimInterval)
	assert.Equal(t, 3, c.retryLimit)
	assert.Equal(t, DefaultBackoffConfig(), c.backoff)
	assert.Equal(t, 5*time.Minute, c.reclaimIdle)
}

func TestConsumerConfigFrom(t *testing.T) {
	cfg := config.RedisStreamConfig{
		ConsumerGroupPrefix: "dev-",
		BlockTimeout:        2 * time.Second,
		RetryLimit:          5,
		RetryBackoff:        config.BackoffConfig{Initial: time.Second, Max: 4 * time.Minute, Multiplier: 3},
	}
	cc := ConsumerConfigFrom(cfg, StreamRetrievalIndex, ConsumerGroupIndexer, "w1")
	assert.Equal(t, ConsumerGroup("dev-cg-indexer"), cc.Group)
	assert.Equal(t, "w1", cc.ConsumerName)
	assert.Equal(t, 5, cc.RetryLimit)

	c := NewConsumer(nil, cc)
	assert.Equal(t, 8*time.Minute, c.reclaimIdle)
}

func TestDecodeMessage(t *testing.T) {
	msg, err := NewMessage("m-1", MessageTypeIndex, 9, retrieval.IndexJob{ProjectID: 9})
	require.NoError(t, err)
	msg.SetMetadata("request_id", "req-9")
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{"valid", map[string]any{"data": string(raw)}, false},
		{"missing data", map[string]any{"other": "x"}, true},
		{"non string", map[string]any{"data": 42}, true},
		{"bad json", map[string]any{"data": "{"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeMessage(redis.XMessage{ID: "1-0", Values: tt.values})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "m-1", got.ID)

			ctx := messageContext(context.Background(), got)
			assert.Equal(t, int64(9), ctx.Value(logger.ProjectIDKey))
			assert.Equal(t, "req-9", ctx.Value(logger.RequestIDKey))
			assert.Nil(t, ctx.Value(logger.TraceIDKey))
		})
	}
}
