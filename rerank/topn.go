package rerank

import (
	"context"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在重排之后限制最终返回条数。
//
// 使用场景：
//   - 融合后截到候选池大小（如 2*top_n），再交给多样性重排
//   - 重排关闭时直接截断融合结果
type TopNNode struct {
	// N 要保留的候选数量；N <= 0 或候选不足 N 条时不截断
	N int
}

func (n *TopNNode) Name() string        { return "rerank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.N <= 0 || len(candidates) <= n.N {
		return candidates, nil
	}
	return candidates[:n.N], nil
}
