package core

import "github.com/rushteam/jobrec/pkg/utils"

// Candidate 是推荐链路中的统一承载结构：一个候选职位与它在各阶段累积的分数。
// 各阶段只追加字段、不回改其他阶段的结果：
//   - 召回阶段写入 ContentSimilarity / CFScore 与 Source
//   - 融合阶段写入 NormalizedContent / NormalizedCF / HybridScore 与 Strategy
//   - 重排阶段写入 DiversityScore / NoveltyScore / FinalScore
//
// HasContent / HasCF 标记该路信号是否存在（冷启动职位可能只有其中一路）。
type Candidate struct {
	JobID string

	// 召回阶段
	ContentSimilarity float64 // 与求职者画像向量的余弦相似度
	HasContent        bool
	CFScore           float64 // 协同过滤预测评分
	HasCF             bool

	// 融合阶段
	NormalizedContent float64
	NormalizedCF      float64
	HybridScore       float64
	Strategy          string // weighted / cascade-content / cascade-collaborative / mixed-content / mixed-collaborative

	// 重排阶段
	DiversityScore float64
	NoveltyScore   float64
	UserNovelty    float64
	RecencyFactor  float64
	FinalScore     float64
	HasFinal       bool

	// Source 记录产出这条候选的召回路（content-based / collaborative）
	Source string

	// Labels 用于解释与策略驱动，全链路透传
	Labels map[string]utils.Label
}

func NewCandidate(jobID string) *Candidate {
	return &Candidate{
		JobID:  jobID,
		Labels: make(map[string]utils.Label),
	}
}

// Relevance 返回这条候选携带的相关性分数：优先 content 相似度，否则 CF 评分。
// 重排阶段用它作为 MMR 与最终混合的 relevance 项。
func (c *Candidate) Relevance() float64 {
	if c.HasContent {
		return c.ContentSimilarity
	}
	if c.HasCF {
		return c.CFScore
	}
	return 0
}

// SetContent 写入 content 路信号。
func (c *Candidate) SetContent(similarity float64) {
	c.ContentSimilarity = similarity
	c.HasContent = true
}

// SetCF 写入协同过滤路信号。
func (c *Candidate) SetCF(score float64) {
	c.CFScore = score
	c.HasCF = true
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}

// 候选来源常量
const (
	SourceContentBased  = "content-based"
	SourceCollaborative = "collaborative"
)
