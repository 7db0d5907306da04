package recall

import (
	"context"

	"go.uber.org/zap"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/pkg/conv"
	"github.com/rushteam/jobrec/pkg/utils"
)

// CFSource 把 ItemCF 模型包装为召回 Source，供融合节点并发 fan-out。
//
// 降级约定：模型未构建或该求职者无行为数据时返回空列表而不是错误——
// 协同过滤整路失败不能阻止 content 路产出可用结果。
type CFSource struct {
	Model *ItemCF

	// TopK 返回 TopK 个职位
	TopK int

	// IncludeInteracted 为 true 时不排除已交互职位（默认排除）
	IncludeInteracted bool

	Logger *zap.Logger
}

func (r *CFSource) Name() string {
	return "recall.cf"
}

func (r *CFSource) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop()
}

func (r *CFSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Candidate, error) {
	if r.Model == nil || rctx == nil || rctx.CandidateID == "" {
		return nil, nil
	}

	topN := r.TopK
	if n, ok := conv.ToInt(rctx.Params["pool_size"]); ok && n > 0 {
		topN = n
	}
	if topN <= 0 {
		topN = 20
	}

	out, err := r.Model.RecommendForCandidate(rctx.CandidateID, topN, !r.IncludeInteracted)
	if err != nil {
		if core.IsInsufficientData(err) {
			// 模型未构建：降级为空结果，content 路继续
			r.logger().Warn("cf source degraded", zap.String("candidate_id", rctx.CandidateID), zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	for _, c := range out {
		c.PutLabel("source_tag", utils.Label{Value: core.SourceCollaborative, Source: "recall"})
	}
	return out, nil
}
