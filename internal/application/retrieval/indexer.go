package retrieval

import (
	"context"
)

// IndexJob 一次索引任务，Content 为空表示删除
type IndexJob struct {
	ProjectID int64  `json:"project_id"`
	RefType   string `json:"ref_type"`
	RefID     int64  `json:"ref_id"`
	Content   string `json:"content"`
}

// Key 任务对应的分块归属
func (j IndexJob) Key() ChunkKey {
	return ChunkKey{ProjectID: j.ProjectID, RefType: j.RefType, RefID: j.RefID}
}

// Indexer 业务层使用的索引入口，同步或经由消息队列异步执行
type Indexer interface {
	Index(ctx context.Context, job IndexJob) error
}

// SyncIndexer 在调用方协程内直接写入索引
type SyncIndexer struct {
	svc *Service
}

func NewSyncIndexer(svc *Service) *SyncIndexer {
	return &SyncIndexer{svc: svc}
}

func (i *SyncIndexer) Index(ctx context.Context, job IndexJob) error {
	return i.svc.UpsertEmbedding(ctx, job.ProjectID, job.RefType, job.RefID, job.Content)
}

// Handle 供队列消费者调用，语义同 Index
func (s *Service) Handle(ctx context.Context, job IndexJob) error {
	return s.UpsertEmbedding(ctx, job.ProjectID, job.RefType, job.RefID, job.Content)
}
