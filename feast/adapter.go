package feast

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rushteam/jobrec/core"
)

// 默认特征名：画像/职位向量按字符串 "[f1, f2, ...]" 特征下发
const (
	DefaultCandidateFeature = "candidate_profile:embedding"
	DefaultJobFeature       = "job_posting:embedding"

	defaultCandidateEntity = "candidate_id"
	defaultJobEntity       = "job_id"
)

// JobIDSource 提供在招职位的 ID 全集。
// Feast 只支持按实体 ID 点查，"全部职位"需要额外的目录来源。
type JobIDSource interface {
	ActiveJobIDs(ctx context.Context) ([]string, error)
}

// EmbeddingAdapter 把 Feast 在线特征服务适配为 core.EmbeddingStore。
//
// 约定：嵌入向量以字符串特征下发，格式 "[0.12, -0.3, ...]"，
// 这里解析为 []float64；列表类型特征（double/float list）也直接支持。
type EmbeddingAdapter struct {
	Client Client

	// Jobs 提供 JobEmbeddings 不带参数时的职位全集；
	// 未配置时空参调用返回 NOT_SUPPORTED
	Jobs JobIDSource

	// CandidateFeature / JobFeature 特征名，空值用默认
	CandidateFeature string
	JobFeature       string

	// CandidateEntity / JobEntity 实体键名，空值用默认
	CandidateEntity string
	JobEntity       string

	Logger *zap.Logger
}

func (a *EmbeddingAdapter) Name() string { return "feast" }

// CandidateEmbedding 实现 core.EmbeddingStore。特征缺失视为 NOT_FOUND。
func (a *EmbeddingAdapter) CandidateEmbedding(ctx context.Context, candidateID string) ([]float64, error) {
	feature := a.candidateFeature()
	resp, err := a.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{feature},
		EntityRows: []map[string]interface{}{{a.candidateEntity(): candidateID}},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.FeatureVectors) == 0 {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound,
			"feast: candidate embedding not found: "+candidateID)
	}

	vec, err := toEmbedding(resp.FeatureVectors[0].Values[feature])
	if err != nil || len(vec) == 0 {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound,
			"feast: candidate embedding not found: "+candidateID)
	}
	return vec, nil
}

// JobEmbeddings 实现 core.EmbeddingStore。
// 无向量或解析失败的职位记日志后跳过，不影响其余职位。
func (a *EmbeddingAdapter) JobEmbeddings(ctx context.Context, jobIDs ...string) ([]core.JobEmbedding, error) {
	if len(jobIDs) == 0 {
		if a.Jobs == nil {
			return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported,
				"feast: job id source not configured, cannot list all jobs")
		}
		var err error
		jobIDs, err = a.Jobs.ActiveJobIDs(ctx)
		if err != nil {
			return nil, err
		}
		if len(jobIDs) == 0 {
			return []core.JobEmbedding{}, nil
		}
	}

	feature := a.jobFeature()
	entity := a.jobEntity()
	rows := make([]map[string]interface{}, len(jobIDs))
	for i, id := range jobIDs {
		rows[i] = map[string]interface{}{entity: id}
	}

	resp, err := a.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{feature},
		EntityRows: rows,
	})
	if err != nil {
		return nil, err
	}

	out := make([]core.JobEmbedding, 0, len(resp.FeatureVectors))
	for i, fv := range resp.FeatureVectors {
		vec, perr := toEmbedding(fv.Values[feature])
		if perr != nil || len(vec) == 0 {
			a.logger().Warn("drop job without usable embedding",
				zap.String("job_id", jobIDs[i]),
				zap.Error(perr))
			continue
		}
		out = append(out, core.JobEmbedding{JobID: jobIDs[i], Vector: vec})
	}
	return out, nil
}

func (a *EmbeddingAdapter) candidateFeature() string {
	if a.CandidateFeature != "" {
		return a.CandidateFeature
	}
	return DefaultCandidateFeature
}

func (a *EmbeddingAdapter) jobFeature() string {
	if a.JobFeature != "" {
		return a.JobFeature
	}
	return DefaultJobFeature
}

func (a *EmbeddingAdapter) candidateEntity() string {
	if a.CandidateEntity != "" {
		return a.CandidateEntity
	}
	return defaultCandidateEntity
}

func (a *EmbeddingAdapter) jobEntity() string {
	if a.JobEntity != "" {
		return a.JobEntity
	}
	return defaultJobEntity
}

func (a *EmbeddingAdapter) logger() *zap.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}

// toEmbedding 把特征值转换为向量：
// 字符串 "[f1, f2, ...]" 解析为 []float64，列表特征直接返回。
func toEmbedding(v interface{}) ([]float64, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []float64:
		return val, nil
	case string:
		return ParseEmbedding(val)
	default:
		return nil, fmt.Errorf("feast: unsupported embedding feature type %T", v)
	}
}

// ParseEmbedding 解析 "[0.1, -0.2, ...]" 形式的字符串向量。
// 空字符串与 "[]" 返回空向量；元素解析失败返回错误。
func ParseEmbedding(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(s)
	if s == "" {
		return []float64{}, nil
	}

	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("feast: parse embedding element %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}

var _ core.EmbeddingStore = (*EmbeddingAdapter)(nil)
