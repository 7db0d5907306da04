package recall

import (
	"context"

	"github.com/rushteam/jobrec/core"
)

// Source 表示一个可复用的召回源（content / 协同过滤 / ...）。
// 可以把它理解为"可并发 fan-out 的策略单元"：融合节点会并发执行
// content 与协同过滤两个 Source，再把两路结果交给融合引擎。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Candidate, error)
}
