// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"
	"os"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/config"
	infraembedding "novel-assistant-api/internal/infrastructure/embedding"
	"novel-assistant-api/internal/infrastructure/llm"
	"novel-assistant-api/internal/infrastructure/messaging"
	"novel-assistant-api/internal/infrastructure/persistence/milvus"
	"novel-assistant-api/internal/infrastructure/persistence/postgres"
	"novel-assistant-api/internal/infrastructure/persistence/redis"
	"novel-assistant-api/pkg/logger"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusClient 仅在 Milvus 为向量后端时连接，否则返回 nil
func ProvideMilvusClient(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	if cfg.Vector.Backend != config.VectorBackendMilvus {
		return nil, func() {}, nil
	}
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideVectorIndex 按 vector.backend 选择向量索引实现
func ProvideVectorIndex(cfg *config.Config, redisClient *redis.Client, milvusClient *milvus.Client) (retrieval.VectorIndex, error) {
	switch cfg.Vector.Backend {
	case config.VectorBackendMilvus:
		if milvusClient == nil {
			return nil, fmt.Errorf("milvus backend selected but client not initialized")
		}
		return milvus.NewVectorIndex(milvusClient), nil
	case "", config.VectorBackendRedis:
		return redis.NewVectorIndex(redisClient, &cfg.Vector.RediSearch), nil
	default:
		return nil, fmt.Errorf("unsupported vector backend: %s", cfg.Vector.Backend)
	}
}

// ProvideEmbedder 创建 Embedder；开启 embedding_cache 时包一层 Redis 查询缓存
func ProvideEmbedder(ctx context.Context, cfg *config.Config, cache *redis.Cache) (einoembedding.Embedder, error) {
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		return nil, err
	}
	if !cfg.Features.EmbeddingCache {
		return embedder, nil
	}
	logger.Info(ctx, "query embedding cache enabled", "model", cfg.Embedding.Model, "ttl", cfg.Embedding.CacheTTL.String())
	return infraembedding.NewCachedEmbedder(embedder, cache, cfg.Embedding.Model, cfg.Embedding.CacheTTL), nil
}

// ProvideRetrievalService 提供检索服务
func ProvideRetrievalService(cfg *config.Config, embedder einoembedding.Embedder, index retrieval.VectorIndex) *retrieval.Service {
	return retrieval.NewService(embedder, index, retrieval.OptionsFromConfig(&cfg.Retrieval))
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	return messaging.NewProducer(redisClient.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))
}

// ProvideIndexer 开启 async_indexing 时把索引任务投递到队列，否则同步写入
func ProvideIndexer(ctx context.Context, cfg *config.Config, svc *retrieval.Service, producer *messaging.Producer) retrieval.Indexer {
	if cfg.Features.AsyncIndexing {
		logger.Info(ctx, "async indexing enabled", "stream", string(messaging.StreamRetrievalIndex))
		return messaging.NewIndexPublisher(producer)
	}
	return retrieval.NewSyncIndexer(svc)
}

// ProvideAdapters 提供 LLM 提供商适配器
func ProvideAdapters(cfg *config.Config) (*llm.Adapters, func()) {
	adapters := llm.NewAdapters(cfg)
	return adapters, func() {
		_ = adapters.Close()
	}
}

// ProvideModelRouter 由配置构建模型注册表与路由表
func ProvideModelRouter(cfg *config.Config, adapters *llm.Adapters) (*modelrouter.Router, error) {
	registry, tables, err := modelrouter.FromConfig(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to build model registry: %w", err)
	}
	return modelrouter.NewRouter(registry, tables, adapters.ByProvider())
}

// ProvideModelRegistry 路由器持有的模型目录
func ProvideModelRegistry(router *modelrouter.Router) *modelrouter.Registry {
	return router.Registry()
}

// ProvideIndexConsumer 提供索引队列消费者
func ProvideIndexConsumer(cfg *config.Config, redisClient *redis.Client, svc *retrieval.Service) *messaging.Consumer {
	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfigFrom(
		cfg.Messaging.RedisStream,
		messaging.StreamRetrievalIndex,
		messaging.ConsumerGroupIndexer,
		ConsumerName(),
	))
	consumer.RegisterHandler(messaging.MessageTypeIndex, messaging.IndexHandler(svc.Handle))
	return consumer
}

// ConsumerName 主机名加随机后缀，同一主机多实例互不冲突
func ConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "index-worker"
	}
	return fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
}
