package filter

import (
	"context"

	"github.com/rushteam/jobrec/core"
)

// SeenFilter 是已投递/已看过过滤器，剔除求职者已经交互过的职位。
// Kinds 指定哪些交互算"看过"：默认只剔除 apply（已投递的职位不再推荐），
// 配置为全部交互类型时等价于协同过滤的 exclude_interacted。
type SeenFilter struct {
	// Store 用于读取求职者的历史交互
	Store core.InteractionStore

	// Kinds 计入"已看过"的交互类型；为空时只算 apply
	Kinds []core.InteractionKind
}

// NewSeenFilter 创建一个已投递过滤器（只剔除 apply 过的职位）。
func NewSeenFilter(store core.InteractionStore) *SeenFilter {
	return &SeenFilter{
		Store: store,
		Kinds: []core.InteractionKind{core.InteractionApply},
	}
}

func (f *SeenFilter) Name() string {
	return "filter.seen"
}

func (f *SeenFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil || rctx == nil || rctx.CandidateID == "" {
		return false, nil
	}
	if f.Store == nil {
		return false, nil
	}

	kinds := f.Kinds
	if len(kinds) == 0 {
		kinds = []core.InteractionKind{core.InteractionApply}
	}

	interactions, err := f.Store.Interactions(ctx)
	if err != nil {
		return false, nil
	}

	for _, it := range interactions {
		if it.CandidateID != rctx.CandidateID || it.JobID != c.JobID {
			continue
		}
		for _, k := range kinds {
			if it.Kind == k {
				return true, nil
			}
		}
	}
	return false, nil
}
