package pipeline

import (
	"context"

	"github.com/rushteam/jobrec/core"
)

// Pipeline 是推荐链路的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 融合与重排节点严格串行，依赖上游两路召回的结果。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	cur := candidates
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			// 调用方超时/取消：在阶段之间中止，不打断单个节点的内层循环
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
