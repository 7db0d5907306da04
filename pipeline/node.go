package pipeline

import (
	"context"

	"github.com/rushteam/jobrec/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：生成候选集（content / 协同过滤）
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合约束的候选
	KindFusion      Kind = "fusion"      // 融合阶段：合并两路召回为一个排序列表
	KindReRank      Kind = "rerank"      // 重排阶段：多样性/新颖性调优
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充元信息或最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 candidates -> 输出 candidates"的形态，
// 方便召回生成、过滤截断、融合合并、重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		candidates []*core.Candidate,
	) ([]*core.Candidate, error)
}
