package rerank

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/pipeline"
	"github.com/rushteam/jobrec/pkg/conv"
)

// BlendWeights 是最终混合的三路权重，Blend 前会归一化到和为 1。
type BlendWeights struct {
	Relevance float64
	Diversity float64
	Novelty   float64
}

// normalize 把三路权重归一化到和为 1；总和 <= 0 时回退为纯相关性。
func (w BlendWeights) normalize() BlendWeights {
	total := w.Relevance + w.Diversity + w.Novelty
	if total <= 0 {
		return BlendWeights{Relevance: 1}
	}
	return BlendWeights{
		Relevance: w.Relevance / total,
		Diversity: w.Diversity / total,
		Novelty:   w.Novelty / total,
	}
}

// Blend 按归一化权重混合 relevance / diversity / novelty 三路分数，
// 写入 FinalScore，按 FinalScore 降序（打平按 JobID 升序）截断到 topN。
func Blend(list []*core.Candidate, w BlendWeights, topN int) []*core.Candidate {
	w = w.normalize()
	for _, c := range list {
		c.FinalScore = w.Relevance*c.Relevance() +
			w.Diversity*c.DiversityScore +
			w.Novelty*c.NoveltyScore
		c.HasFinal = true
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].FinalScore != list[j].FinalScore {
			return list[i].FinalScore > list[j].FinalScore
		}
		return list[i].JobID < list[j].JobID
	})
	if topN > 0 && len(list) > topN {
		list = list[:topN]
	}
	return list
}

// DiversityNovelty 是一个 ReRank Node：对融合后的候选池先做 MMR 选取，
// 再做新颖性打分，最后按三路权重混合出最终排序。
//
// 输入候选池通常是 2*top_n 大小（由上游融合阶段保证），MMR 从中选出 top_n。
type DiversityNovelty struct {
	Embeddings core.EmbeddingStore
	Novelty    *NoveltyScorer

	// DefaultLambda MMR 的 λ 默认值，请求可通过 mmr_lambda 覆盖
	DefaultLambda float64
	// DefaultDiversityWeight / DefaultNoveltyWeight 最终混合的默认权重；
	// 相关性权重取 1 − diversity − novelty（下限 0），之后整体归一化
	DefaultDiversityWeight float64
	DefaultNoveltyWeight   float64
	// DefaultTopN 请求未指定 top_n 时的输出条数
	DefaultTopN int

	Logger *zap.Logger
}

func (n *DiversityNovelty) Name() string        { return "rerank.diversity_novelty" }
func (n *DiversityNovelty) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *DiversityNovelty) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	lambda := conv.ConfigGetFloat64(rctx.Params, "mmr_lambda", n.DefaultLambda)
	dw := conv.ConfigGetFloat64(rctx.Params, "diversity_weight", n.DefaultDiversityWeight)
	nw := conv.ConfigGetFloat64(rctx.Params, "novelty_weight", n.DefaultNoveltyWeight)
	topN := n.DefaultTopN
	if v, ok := conv.ToInt(rctx.Params["top_n"]); ok {
		topN = v
	}

	embeddings, err := n.fetchEmbeddings(ctx, candidates)
	if err != nil {
		return nil, err
	}

	selected, err := MMRSelect(candidates, embeddings, lambda, topN)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return selected, nil
	}

	if n.Novelty != nil {
		n.Novelty.Score(ctx, rctx.CandidateID, selected)
	} else {
		for _, c := range selected {
			c.NoveltyScore = noveltyUnavailable
		}
	}

	rw := 1.0 - dw - nw
	if rw < 0 {
		rw = 0
	}
	return Blend(selected, BlendWeights{Relevance: rw, Diversity: dw, Novelty: nw}, topN), nil
}

// fetchEmbeddings 一次性取回候选池中所有职位的向量，供 MMR 使用。
func (n *DiversityNovelty) fetchEmbeddings(
	ctx context.Context,
	candidates []*core.Candidate,
) (map[string][]float64, error) {
	jobIDs := make([]string, len(candidates))
	for i, c := range candidates {
		jobIDs[i] = c.JobID
	}
	jobs, err := n.Embeddings.JobEmbeddings(ctx, jobIDs...)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]float64, len(jobs))
	for _, j := range jobs {
		out[j.JobID] = j.Vector
	}
	if len(out) < len(candidates) {
		n.logger().Debug("candidates without embeddings will be dropped before mmr",
			zap.Int("pool", len(candidates)),
			zap.Int("with_embedding", len(out)))
	}
	return out, nil
}

func (n *DiversityNovelty) logger() *zap.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return zap.NewNop()
}
