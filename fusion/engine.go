package fusion

import (
	"fmt"
	"sort"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/pkg/utils"
)

// Options 是一次融合调用的参数。
type Options struct {
	TopN int
	// Weights 仅 weighted 策略使用；引擎不做归一化，由调用方保证合理性
	Weights *Weights
}

// Fuse 把 content 路与协同过滤路两个有序候选列表按策略合并为一个列表。
//
// 约束：
//   - topN <= 0 返回 INVALID_ARGUMENT
//   - weighted 策略必须提供 Weights，否则返回 INVALID_ARGUMENT
//   - 输出候选都带 Strategy 标签，记录产出路径
//   - 同一 JobID 出现在两路时合并信号，不重复输出
func Fuse(contentList, cfList []*core.Candidate, strategy Strategy, opt Options) ([]*core.Candidate, error) {
	if opt.TopN <= 0 {
		return nil, core.NewDomainError(core.ModuleFusion, core.ErrorCodeInvalidArgument,
			fmt.Sprintf("fusion: top_n must be positive, got %d", opt.TopN))
	}
	switch strategy {
	case StrategyWeighted:
		if opt.Weights == nil {
			return nil, core.NewDomainError(core.ModuleFusion, core.ErrorCodeInvalidArgument,
				"fusion: weighted strategy requires weights")
		}
		return fuseWeighted(contentList, cfList, *opt.Weights, opt.TopN), nil
	case StrategyCascade:
		return fuseCascade(contentList, cfList, opt.TopN), nil
	case StrategyMixed:
		return fuseMixed(contentList, cfList, opt.TopN), nil
	default:
		return nil, core.NewDomainError(core.ModuleFusion, core.ErrorCodeInvalidArgument,
			"fusion: unknown strategy: "+string(strategy))
	}
}

// fuseWeighted 两路各自 min-max 归一化后按权重加权合并。
// 取两路 JobID 的并集：某路缺失时该路归一化分数记为 0。
func fuseWeighted(contentList, cfList []*core.Candidate, w Weights, topN int) []*core.Candidate {
	contentScores := make([]float64, len(contentList))
	for i, c := range contentList {
		contentScores[i] = c.ContentSimilarity
	}
	cfScores := make([]float64, len(cfList))
	for i, c := range cfList {
		cfScores[i] = c.CFScore
	}
	normContent := MinMax(contentScores)
	normCF := MinMax(cfScores)

	merged := make(map[string]*core.Candidate, len(contentList)+len(cfList))
	order := make([]*core.Candidate, 0, len(contentList)+len(cfList))
	for i, c := range contentList {
		c.NormalizedContent = normContent[i]
		merged[c.JobID] = c
		order = append(order, c)
	}
	for i, c := range cfList {
		if exist, ok := merged[c.JobID]; ok {
			exist.SetCF(c.CFScore)
			exist.NormalizedCF = normCF[i]
			mergeLabels(exist, c)
			continue
		}
		c.NormalizedCF = normCF[i]
		merged[c.JobID] = c
		order = append(order, c)
	}

	for _, c := range order {
		c.HybridScore = w.Content*c.NormalizedContent + w.CF*c.NormalizedCF
		c.Strategy = TagWeighted
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].HybridScore != order[j].HybridScore {
			return order[i].HybridScore > order[j].HybridScore
		}
		return order[i].JobID < order[j].JobID
	})
	if len(order) > topN {
		order = order[:topN]
	}
	return order
}

// fuseCascade content 路优先按序取满，不足时从协同过滤路按序补齐；
// 已选 JobID 跳过，content 路提前耗尽时完全回退到协同过滤路。
func fuseCascade(contentList, cfList []*core.Candidate, topN int) []*core.Candidate {
	out := make([]*core.Candidate, 0, topN)
	seen := make(map[string]bool, topN)
	for _, c := range contentList {
		if len(out) >= topN {
			break
		}
		if seen[c.JobID] {
			continue
		}
		seen[c.JobID] = true
		c.HybridScore = c.ContentSimilarity
		c.Strategy = TagCascadeContent
		out = append(out, c)
	}
	for _, c := range cfList {
		if len(out) >= topN {
			break
		}
		if seen[c.JobID] {
			continue
		}
		seen[c.JobID] = true
		c.HybridScore = c.CFScore
		c.Strategy = TagCascadeCollaborative
		out = append(out, c)
	}
	return out
}

// fuseMixed 两路交替各取一条，跳过已选，直到取满或两路都耗尽。
func fuseMixed(contentList, cfList []*core.Candidate, topN int) []*core.Candidate {
	out := make([]*core.Candidate, 0, topN)
	seen := make(map[string]bool, topN)
	ci, fi := 0, 0
	for len(out) < topN && (ci < len(contentList) || fi < len(cfList)) {
		for ci < len(contentList) {
			c := contentList[ci]
			ci++
			if seen[c.JobID] {
				continue
			}
			seen[c.JobID] = true
			c.HybridScore = c.ContentSimilarity
			c.Strategy = TagMixedContent
			out = append(out, c)
			break
		}
		if len(out) >= topN {
			break
		}
		for fi < len(cfList) {
			c := cfList[fi]
			fi++
			if seen[c.JobID] {
				continue
			}
			seen[c.JobID] = true
			c.HybridScore = c.CFScore
			c.Strategy = TagMixedCollaborative
			out = append(out, c)
			break
		}
	}
	return out
}

// mergeLabels 把 src 的 Labels 合并进 dst（weighted 并集场景下两路信号汇到同一候选上）。
func mergeLabels(dst, src *core.Candidate) {
	for k, v := range src.Labels {
		dst.PutLabel(k, v)
	}
	if src.Source != "" && dst.Source != src.Source {
		dst.PutLabel("source_tag", utils.Label{Value: src.Source, Source: "fusion"})
	}
}
