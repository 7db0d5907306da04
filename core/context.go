package core

import "github.com/rushteam/jobrec/pkg/utils"

// RecommendContext 承载一次推荐请求的求职者/场景信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	CandidateID string // 求职者（简历）ID
	Scene       string

	// CandidateEmbedding 是求职者画像向量的只读视图，
	// 引擎入口取一次后供 content 召回使用，避免重复查询。
	CandidateEmbedding []float64

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	// 例如：新用户、活跃求职者等
	Labels map[string]utils.Label

	// Params 请求级上下文参数：top_n、strategy、各权重等
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
