package filter

import (
	"context"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/pkg/dsl"
)

// RuleFilter 是基于 CEL 表达式的规则过滤器，表达式返回 true 的候选被剔除。
//
// 示例：
//   - 剔除低分候选：candidate.hybrid_score < 0.1
//   - 只在某策略下剔除：candidate.strategy_tag == "cascade-collaborative" && candidate.cf_score < 1.0
//   - 按召回来源剔除：candidate.source_tag == "collaborative"
type RuleFilter struct {
	// Expr 是 CEL 过滤表达式；空表达式不过滤任何候选
	Expr string
}

// NewRuleFilter 创建一个规则过滤器。
func NewRuleFilter(expr string) *RuleFilter {
	return &RuleFilter{Expr: expr}
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil || f.Expr == "" {
		return false, nil
	}
	return dsl.NewEval(c, rctx).Evaluate(f.Expr)
}
