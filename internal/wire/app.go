package wire

import (
	einoembedding "github.com/cloudwego/eino/components/embedding"

	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/infrastructure/messaging"
	"novel-assistant-api/internal/infrastructure/persistence/postgres"
	"novel-assistant-api/internal/infrastructure/persistence/redis"
)

// IndexWorker index-worker 进程依赖
type IndexWorker struct {
	Consumer  *messaging.Consumer
	Retrieval *retrieval.Service
}

// Bootstrap 初始化进程依赖：建表、预建向量索引、清理查询向量缓存
type Bootstrap struct {
	Config    *config.Config
	Postgres  *postgres.Client
	Cache     *redis.Cache
	Embedder  einoembedding.Embedder
	Retrieval *retrieval.Service
}
