//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"novel-assistant-api/internal/application/modelrouter"
	"novel-assistant-api/internal/application/retrieval"
	"novel-assistant-api/internal/application/story"
	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/domain/repository"
	"novel-assistant-api/internal/infrastructure/persistence/postgres"
	"novel-assistant-api/internal/infrastructure/persistence/redis"
	"novel-assistant-api/internal/interfaces/http/handler"
	"novel-assistant-api/internal/interfaces/http/middleware"
	"novel-assistant-api/internal/interfaces/http/router"
	"novel-assistant-api/internal/workflow/prompt"
)

// InitializeApp 初始化 API 网关
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		RetrievalSet,
		MessagingSet,
		LLMSet,
		StorySet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeIndexWorker 初始化索引队列消费者
func InitializeIndexWorker(ctx context.Context, cfg *config.Config) (*IndexWorker, func(), error) {
	wire.Build(
		RedisSet,
		RetrievalSet,
		ProvideIndexConsumer,
		wire.Struct(new(IndexWorker), "*"),
	)
	return nil, nil, nil
}

// InitializeBootstrap 初始化 bootstrap 依赖
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		RedisSet,
		RetrievalSet,
		wire.Struct(new(Bootstrap), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewProjectRepository,
	postgres.NewVolumeRepository,
	postgres.NewChapterRepository,
	postgres.NewCharacterRepository,
	postgres.NewWorldElementRepository,
	postgres.NewClueRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.ProjectRepository), new(*postgres.ProjectRepository)),
	wire.Bind(new(repository.VolumeRepository), new(*postgres.VolumeRepository)),
	wire.Bind(new(repository.ChapterRepository), new(*postgres.ChapterRepository)),
	wire.Bind(new(repository.CharacterRepository), new(*postgres.CharacterRepository)),
	wire.Bind(new(repository.WorldElementRepository), new(*postgres.WorldElementRepository)),
	wire.Bind(new(repository.ClueRepository), new(*postgres.ClueRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// RetrievalSet 向量后端、Embedder 与检索服务
var RetrievalSet = wire.NewSet(
	ProvideMilvusClient,
	ProvideVectorIndex,
	ProvideEmbedder,
	ProvideRetrievalService,
)

// MessagingSet 消息队列与索引入口
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
	ProvideIndexer,
)

// LLMSet 提供商适配器与模型路由
var LLMSet = wire.NewSet(
	ProvideAdapters,
	ProvideModelRouter,
	ProvideModelRegistry,
)

// StorySet 写作助手
var StorySet = wire.NewSet(
	prompt.NewRegistry,
	wire.Struct(new(story.Repositories), "*"),
	story.NewAssistant,
	wire.Bind(new(story.Generator), new(*modelrouter.Router)),
	wire.Bind(new(story.PromptRenderer), new(*prompt.Registry)),
	wire.Bind(new(story.ContextSearcher), new(*retrieval.Service)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	wire.FieldsOf(new(*config.Config), "Features"),
	handler.NewHealthHandler,
	handler.NewProjectHandler,
	handler.NewVolumeHandler,
	handler.NewChapterHandler,
	handler.NewCharacterHandler,
	handler.NewWorldElementHandler,
	handler.NewClueHandler,
	handler.NewAIHandler,
	wire.Bind(new(handler.RelatedSearcher), new(*retrieval.Service)),
	wire.Bind(new(handler.ModelCatalog), new(*modelrouter.Registry)),
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
