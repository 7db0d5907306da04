// Package engine 是推荐引擎的入口门面：边界校验、两路并发召回、
// 融合、重排与降级策略都在这里编排。
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/fusion"
	"github.com/rushteam/jobrec/recall"
	"github.com/rushteam/jobrec/rerank"
)

// Request 是一次推荐请求的全部参数。所有数值参数在任何计算前校验。
type Request struct {
	CandidateID string

	// TopN 返回条数，必须为正且不超过配置的上限
	TopN int

	// Strategy 融合策略：weighted / cascade / mixed，空值取 weighted
	Strategy string

	// ContentWeight / CFWeight weighted 策略的两路权重，须落在 [0,1]；
	// 两者都为 0 时取配置默认值（0.6 / 0.4）
	ContentWeight float64
	CFWeight      float64

	// EnableDiversity 开启 MMR 多样性 + 新颖性重排
	EnableDiversity bool
	// DiversityWeight / NoveltyWeight 最终混合权重，须落在 [0,1]
	DiversityWeight float64
	NoveltyWeight   float64
	// MMRLambda λ ∈ [0,1]；λ=1 纯相关性，λ=0 纯多样性
	MMRLambda float64
}

// Recommender 是混合推荐引擎的门面。
//
// 编排流程：
//  1. 边界校验（top_n、权重、λ、策略）
//  2. content 与协同过滤两路并发执行，各取 2*top_n 的候选池
//  3. 融合两路候选
//  4. 可选：MMR + 新颖性重排
//
// 降级契约：
//   - 协同过滤失败（数据不足 / 冷启动）降级为 content-only，只记日志
//   - 求职者画像向量缺失时整体失败（NOT_FOUND）
//   - 重排失败回退为融合结果
type Recommender struct {
	embeddings core.EmbeddingStore
	activity   core.ActivityStore
	content    *recall.ContentRecall
	cf         *recall.ItemCF
	config     core.EngineConfig
	logger     *zap.Logger
}

// Option 配置 Recommender 的可选依赖。
type Option func(*Recommender)

// WithActivityStore 注入新颖性打分的数据源；不注入时新颖性回退为 0.5。
func WithActivityStore(s core.ActivityStore) Option {
	return func(r *Recommender) { r.activity = s }
}

// WithConfig 注入引擎配置（上限与默认值）。
func WithConfig(c core.EngineConfig) Option {
	return func(r *Recommender) { r.config = c }
}

// WithLogger 注入日志器。
func WithLogger(l *zap.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

// NewRecommender 创建推荐引擎。embeddings 必选；cf 为 nil 时只走 content 路。
func NewRecommender(embeddings core.EmbeddingStore, cf *recall.ItemCF, opts ...Option) *Recommender {
	r := &Recommender{
		embeddings: embeddings,
		cf:         cf,
		config:     &core.DefaultEngineConfig{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.content = &recall.ContentRecall{Embeddings: embeddings, Logger: r.logger}
	return r
}

// Recommend 执行一次完整的推荐请求。
func (r *Recommender) Recommend(ctx context.Context, req Request) ([]*core.Candidate, error) {
	strategy, err := r.validate(&req)
	if err != nil {
		return nil, err
	}

	// 画像向量缺失是请求级失败，在召回前拒绝
	candidateEmb, err := r.embeddings.CandidateEmbedding(ctx, req.CandidateID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound,
				"engine: candidate embedding not found: "+req.CandidateID)
		}
		return nil, err
	}

	// 两路各取 2*top_n 的候选池，为融合与 MMR 留出余量
	poolSize := req.TopN * 2

	var (
		contentList []*core.Candidate
		cfList      []*core.Candidate
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		list, rerr := r.content.Recommend(egCtx, candidateEmb, poolSize)
		if rerr != nil {
			return rerr
		}
		contentList = list
		return nil
	})
	if r.cf != nil {
		eg.Go(func() error {
			list, rerr := r.cf.RecommendForCandidate(req.CandidateID, poolSize, true)
			if rerr != nil {
				// 协同过滤降级：记录后以空结果继续
				r.logger.Warn("cf path degraded to content-only",
					zap.String("candidate_id", req.CandidateID),
					zap.Error(rerr))
				return nil
			}
			cfList = list
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 重排开启时融合保留整个候选池，由 MMR 再选出 top_n
	fuseTopN := req.TopN
	if req.EnableDiversity {
		fuseTopN = poolSize
	}
	fused, err := fusion.Fuse(contentList, cfList, strategy, fusion.Options{
		TopN:    fuseTopN,
		Weights: &fusion.Weights{Content: req.ContentWeight, CF: req.CFWeight},
	})
	if err != nil {
		return nil, err
	}

	if !req.EnableDiversity {
		return fused, nil
	}

	reranked, err := r.rerank(ctx, req, fused)
	if err != nil {
		// 重排失败回退为融合结果
		r.logger.Warn("rerank failed, falling back to fused list",
			zap.String("candidate_id", req.CandidateID),
			zap.Error(err))
		if len(fused) > req.TopN {
			fused = fused[:req.TopN]
		}
		return fused, nil
	}
	return reranked, nil
}

// rerank 对融合候选池执行 MMR + 新颖性重排。
func (r *Recommender) rerank(ctx context.Context, req Request, pool []*core.Candidate) ([]*core.Candidate, error) {
	if len(pool) == 0 {
		return pool, nil
	}

	jobIDs := make([]string, len(pool))
	for i, c := range pool {
		jobIDs[i] = c.JobID
	}
	jobs, err := r.embeddings.JobEmbeddings(ctx, jobIDs...)
	if err != nil {
		return nil, err
	}
	embs := make(map[string][]float64, len(jobs))
	for _, j := range jobs {
		embs[j.JobID] = j.Vector
	}

	selected, err := rerank.MMRSelect(pool, embs, req.MMRLambda, req.TopN)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return selected, nil
	}

	scorer := &rerank.NoveltyScorer{
		Activity:  r.activity,
		DecayDays: r.config.NoveltyDecayDays(),
		Logger:    r.logger,
	}
	scorer.Score(ctx, req.CandidateID, selected)

	rw := 1.0 - req.DiversityWeight - req.NoveltyWeight
	if rw < 0 {
		rw = 0
	}
	return rerank.Blend(selected, rerank.BlendWeights{
		Relevance: rw,
		Diversity: req.DiversityWeight,
		Novelty:   req.NoveltyWeight,
	}, req.TopN), nil
}

// validate 在任何计算前校验请求参数并填充默认值。
func (r *Recommender) validate(req *Request) (fusion.Strategy, error) {
	if req.CandidateID == "" {
		return "", core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidArgument,
			"engine: candidate_id is required")
	}
	if req.TopN <= 0 {
		return "", core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidArgument,
			fmt.Sprintf("engine: top_n must be positive, got %d", req.TopN))
	}
	if max := r.config.MaxTopN(); req.TopN > max {
		return "", core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidArgument,
			fmt.Sprintf("engine: top_n %d exceeds limit %d", req.TopN, max))
	}

	if req.Strategy == "" {
		req.Strategy = string(fusion.StrategyWeighted)
	}
	strategy, err := fusion.ParseStrategy(req.Strategy)
	if err != nil {
		return "", err
	}

	for name, w := range map[string]float64{
		"content_weight":   req.ContentWeight,
		"cf_weight":        req.CFWeight,
		"diversity_weight": req.DiversityWeight,
		"novelty_weight":   req.NoveltyWeight,
		"mmr_lambda":       req.MMRLambda,
	} {
		if w < 0 || w > 1 {
			return "", core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidArgument,
				fmt.Sprintf("engine: %s must be in [0,1], got %v", name, w))
		}
	}

	// weighted 两路权重都未指定时取配置默认
	if strategy == fusion.StrategyWeighted && req.ContentWeight == 0 && req.CFWeight == 0 {
		req.ContentWeight = r.config.DefaultContentWeight()
		req.CFWeight = r.config.DefaultCFWeight()
	}
	return strategy, nil
}

// Rebuild 重建协同过滤模型（显式调用，见 ItemCF 的状态机说明）。
func (r *Recommender) Rebuild(ctx context.Context) error {
	if r.cf == nil {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotSupported,
			"engine: cf model not configured")
	}
	return r.cf.Rebuild(ctx)
}

// SimilarJobs 返回与指定职位最相似的 TopN 职位（与求职者无关）。
func (r *Recommender) SimilarJobs(jobID string, topN int) ([]recall.SimilarJob, error) {
	if r.cf == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotSupported,
			"engine: cf model not configured")
	}
	return r.cf.SimilarItems(jobID, topN)
}

// Stats 是引擎当前状态的快照，用于监控与诊断。
type Stats struct {
	// ContentCandidatesIndexed 带向量的职位数
	ContentCandidatesIndexed int `json:"content_candidates_indexed"`
	// CFMatrixShape 交互矩阵形状，如 "12x40"；未构建为空
	CFMatrixShape string `json:"cf_matrix_shape"`
	// CFSparsity 交互矩阵稀疏度 [0,1]
	CFSparsity float64 `json:"cf_sparsity"`
	// CFModelVersion 模型版本号，每次重建递增；0 表示未构建
	CFModelVersion int64 `json:"cf_model_version"`
	// StrategiesAvailable 可用融合策略
	StrategiesAvailable []string `json:"strategies_available"`
}

// Stats 返回引擎状态：内容侧索引量、协同过滤矩阵形状/稀疏度/版本、可用策略。
func (r *Recommender) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{StrategiesAvailable: fusion.Strategies()}

	jobs, err := r.embeddings.JobEmbeddings(ctx)
	if err != nil {
		return nil, err
	}
	s.ContentCandidatesIndexed = len(jobs)

	if r.cf != nil {
		if snap := r.cf.Snapshot(); snap != nil {
			s.CFMatrixShape = snap.Shape()
			s.CFSparsity = snap.Sparsity()
			s.CFModelVersion = snap.Version
		}
	}
	return s, nil
}
