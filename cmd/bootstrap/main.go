// Package main 初始化数据库结构与向量索引
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"novel-assistant-api/internal/config"
	"novel-assistant-api/internal/wire"
	"novel-assistant-api/pkg/logger"
)

// dimensionProbe 用于探测向量维度的样本文本
const dimensionProbe = "dimension probe"

func main() {
	skipIndex := flag.Bool("skip-index", false, "skip creating the vector index")
	flushCache := flag.Bool("flush-embedding-cache", false, "delete cached query embeddings of the configured model")
	flag.Parse()

	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	ctx := context.Background()

	// 2. 初始化依赖
	deps, cleanup, err := wire.InitializeBootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize dependencies: %v", err)
	}
	defer cleanup()

	// 3. 建表与约束
	fmt.Println("Migrating database schema...")
	if err := deps.Postgres.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 4. 预建向量索引，维度由一次真实 embedding 决定
	if !*skipIndex {
		vectors, err := deps.Embedder.EmbedStrings(ctx, []string{dimensionProbe})
		if err != nil {
			log.Fatalf("failed to probe embedding dimension: %v", err)
		}
		if len(vectors) == 0 || len(vectors[0]) == 0 {
			log.Fatalf("embedding provider returned an empty vector")
		}
		dim := len(vectors[0])
		fmt.Printf("Ensuring %s vector index (dim=%d)...\n", cfg.Vector.Backend, dim)
		if err := deps.Retrieval.EnsureIndex(ctx, dim); err != nil {
			log.Fatalf("failed to ensure vector index: %v", err)
		}
	}

	// 5. 切换 embedding 模型后清理旧缓存
	if *flushCache {
		fmt.Printf("Flushing query embedding cache for model %q...\n", cfg.Embedding.Model)
		if err := deps.Cache.InvalidateEmbeddings(ctx, cfg.Embedding.Model); err != nil {
			log.Fatalf("failed to flush embedding cache: %v", err)
		}
	}

	fmt.Println("Bootstrap completed successfully.")
}
