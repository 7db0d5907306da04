package recall

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/pkg/conv"
	"github.com/rushteam/jobrec/pkg/utils"
	"github.com/rushteam/jobrec/pkg/vectormath"
)

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想：求职者画像向量与职位向量方向越接近，职位越匹配。
//
// 算法流程：
//  1. 取求职者画像嵌入（上游嵌入模型产出，这里只读）
//  2. 对语料中每个职位计算余弦相似度
//  3. 相似度降序排序，同分按职位 ID 升序保证确定性，取 TopN
//
// 容错：单个职位向量维度不一致时记日志并丢弃该职位，不影响其余候选。
type ContentRecall struct {
	Embeddings core.EmbeddingStore

	// TopK 返回 TopK 个职位
	TopK int

	Logger *zap.Logger
}

func (r *ContentRecall) Name() string {
	return "recall.content"
}

func (r *ContentRecall) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop()
}

// RankCorpus 对给定语料做纯内存排序，不触达存储。
// candidateEmb 不能为空；语料为空时返回空列表而不是错误。
func (r *ContentRecall) RankCorpus(
	candidateEmb []float64,
	corpus []core.JobEmbedding,
	topN int,
) ([]*core.Candidate, error) {
	if topN <= 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidArgument,
			"recall: top_n must be positive")
	}
	if len(candidateEmb) == 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidArgument,
			"recall: candidate embedding is empty")
	}
	if len(corpus) == 0 {
		return []*core.Candidate{}, nil
	}

	out := make([]*core.Candidate, 0, len(corpus))
	for _, job := range corpus {
		sim, err := vectormath.Cosine(candidateEmb, job.Vector)
		if err != nil {
			// 单条维度不一致：丢弃该职位，其余照常参与排序
			r.logger().Warn("drop job with bad embedding",
				zap.String("job_id", job.JobID), zap.Error(err))
			continue
		}

		c := core.NewCandidate(job.JobID)
		c.SetContent(sim)
		c.Source = core.SourceContentBased
		c.PutLabel("source_tag", utils.Label{Value: core.SourceContentBased, Source: "recall"})
		out = append(out, c)
	}

	// 相似度降序；同分按职位 ID 升序（确定性保证）
	sort.Slice(out, func(i, j int) bool {
		if out[i].ContentSimilarity != out[j].ContentSimilarity {
			return out[i].ContentSimilarity > out[j].ContentSimilarity
		}
		return out[i].JobID < out[j].JobID
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// Recommend 从 EmbeddingStore 取职位语料并排序。
func (r *ContentRecall) Recommend(
	ctx context.Context,
	candidateEmb []float64,
	topN int,
) ([]*core.Candidate, error) {
	if topN <= 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidArgument,
			"recall: top_n must be positive")
	}
	if r.Embeddings == nil {
		return []*core.Candidate{}, nil
	}

	corpus, err := r.Embeddings.JobEmbeddings(ctx)
	if err != nil {
		return nil, err
	}
	return r.RankCorpus(candidateEmb, corpus, topN)
}

// Recall 实现 Source 接口：从 RecommendContext 取求职者向量（没有则按 ID 查询），
// 候选池大小取 Params["pool_size"]，否则用 TopK（默认 20）。
func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Candidate, error) {
	if rctx == nil || rctx.CandidateID == "" {
		return nil, nil
	}

	emb := rctx.CandidateEmbedding
	if emb == nil {
		if r.Embeddings == nil {
			return nil, nil
		}
		var err error
		emb, err = r.Embeddings.CandidateEmbedding(ctx, rctx.CandidateID)
		if err != nil {
			return nil, err
		}
	}

	topN := r.TopK
	if n, ok := conv.ToInt(rctx.Params["pool_size"]); ok && n > 0 {
		topN = n
	}
	if topN <= 0 {
		topN = 20
	}

	return r.Recommend(ctx, emb, topN)
}
