package core

import (
	"context"
	"time"
)

// JobEmbedding 是一条带职位 ID 的嵌入向量。向量由上游嵌入模型产出，
// 引擎只持有只读视图，不做任何修改。
type JobEmbedding struct {
	JobID  string
	Vector []float64
}

// EmbeddingStore 是嵌入向量的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store / feast）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 实现：
//   - recall.StoreEmbeddingAdapter（基于 core.Store，Redis/内存均可）
//   - feast.EmbeddingAdapter（基于 Feast 在线特征服务）
type EmbeddingStore interface {
	// Name 返回后端名称（用于日志/监控）
	Name() string

	// CandidateEmbedding 获取求职者画像向量；不存在时返回 NOT_FOUND 领域错误
	CandidateEmbedding(ctx context.Context, candidateID string) ([]float64, error)

	// JobEmbeddings 获取职位向量；jobIDs 为空时返回全部带向量的在招职位
	JobEmbeddings(ctx context.Context, jobIDs ...string) ([]JobEmbedding, error)
}

// InteractionStore 是行为事件的领域接口，协同过滤模型重建时全量读取。
type InteractionStore interface {
	Name() string

	// Interactions 返回全部行为事件
	Interactions(ctx context.Context) ([]Interaction, error)
}

// ActivityStore 是新颖性（novelty）打分所需的行为时间数据接口。
type ActivityStore interface {
	Name() string

	// LastViewed 返回求职者对各职位最近一次 view/click 的时间；未看过的职位不出现在结果里
	LastViewed(ctx context.Context, candidateID string, jobIDs []string) (map[string]time.Time, error)

	// JobPostedAt 返回各职位的发布时间；未知职位不出现在结果里
	JobPostedAt(ctx context.Context, jobIDs []string) (map[string]time.Time, error)
}
