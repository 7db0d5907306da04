// Package rerank 对融合后的候选列表做多样性（MMR）与新颖性调优，
// 产出最终排序。
package rerank

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/pkg/vectormath"
)

// MMRSelect 用 Maximal Marginal Relevance 从候选池中贪心选出 topN 条。
//
// 算法：
//   - 以相关性最高的候选作为种子
//   - 每步对剩余候选计算 mmr = λ*relevance − (1−λ)*maxSimToSelected，取最大者
//   - λ=1 退化为纯相关性排序，λ=0 退化为纯多样性
//
// 约束：
//   - lambda 必须落在 [0,1]，否则返回 INVALID_ARGUMENT
//   - 缺少职位向量的候选在进入 MMR 前被剔除
//   - 选中的候选写入 DiversityScore = 1 − (rank−1)/poolSize，保序可混合
func MMRSelect(
	pool []*core.Candidate,
	embeddings map[string][]float64,
	lambda float64,
	topN int,
) ([]*core.Candidate, error) {
	if lambda < 0 || lambda > 1 {
		return nil, core.NewDomainError(core.ModuleReRank, core.ErrorCodeInvalidArgument,
			fmt.Sprintf("rerank: mmr lambda must be in [0,1], got %v", lambda))
	}
	if topN <= 0 {
		return nil, core.NewDomainError(core.ModuleReRank, core.ErrorCodeInvalidArgument,
			fmt.Sprintf("rerank: top_n must be positive, got %d", topN))
	}

	// 剔除无向量候选
	remaining := make([]*core.Candidate, 0, len(pool))
	for _, c := range pool {
		if len(embeddings[c.JobID]) > 0 {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		return []*core.Candidate{}, nil
	}
	poolSize := len(remaining)

	// 种子：相关性最高者，打平按 JobID 升序
	sort.SliceStable(remaining, func(i, j int) bool {
		ri, rj := remaining[i].Relevance(), remaining[j].Relevance()
		if ri != rj {
			return ri > rj
		}
		return remaining[i].JobID < remaining[j].JobID
	})

	selected := make([]*core.Candidate, 0, topN)
	selectedVecs := make([][]float64, 0, topN)
	pick := func(idx int) {
		c := remaining[idx]
		rank := len(selected) + 1
		c.DiversityScore = 1.0 - float64(rank-1)/float64(poolSize)
		selected = append(selected, c)
		selectedVecs = append(selectedVecs, embeddings[c.JobID])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	pick(0)

	for len(selected) < topN && len(remaining) > 0 {
		bestIdx := -1
		bestMMR := 0.0
		for i, c := range remaining {
			// 余弦相似度落在 [-1,1]：取真实最大值，负相关也计入多样性收益
			maxSim := math.Inf(-1)
			vec := embeddings[c.JobID]
			for _, sv := range selectedVecs {
				sim, err := vectormath.Cosine(vec, sv)
				if err != nil {
					return nil, err
				}
				if sim > maxSim {
					maxSim = sim
				}
			}
			mmr := lambda*c.Relevance() - (1-lambda)*maxSim
			if bestIdx < 0 || mmr > bestMMR ||
				(mmr == bestMMR && c.JobID < remaining[bestIdx].JobID) {
				bestIdx = i
				bestMMR = mmr
			}
		}
		pick(bestIdx)
	}

	return selected, nil
}

// AnalyzeDiversity 返回一组候选的两两相似度统计（平均/最小/最大），
// 用于评估重排前后的多样性变化。缺向量的候选跳过。
func AnalyzeDiversity(list []*core.Candidate, embeddings map[string][]float64) (avg, min, max float64, err error) {
	vecs := make([][]float64, 0, len(list))
	for _, c := range list {
		if v := embeddings[c.JobID]; len(v) > 0 {
			vecs = append(vecs, v)
		}
	}
	return vectormath.PairwiseAverage(vecs)
}
