package recall

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/pkg/vectormath"
)

// ItemCF 是基于物品的协同过滤模型（Item-based Collaborative Filtering, Item-CF）。
//
// 核心思想："被同一批求职者青睐的职位，相互相似"
//
// 算法流程：
//  1. 行为事件按 (求职者, 职位) 聚合为隐式评分，构建稀疏交互矩阵
//  2. 以职位列向量两两计算余弦相似度，得到物品相似度矩阵（零对角）
//  3. 预测评分 = 目标职位相似度行对该求职者已评分职位的加权平均
//
// 模型状态机：Unbuilt → Built → Stale。
// Stale 只是调用方约定：新事件到达后必须显式 Rebuild 才会反映到模型里，
// 引擎不做自动失效。Build 产出不可变快照并原子替换，重建期间在途读者
// 始终看到完整的旧快照（单写多读）。
type ItemCF struct {
	// Store 可选；Rebuild 时从这里全量读取行为事件
	Store core.InteractionStore

	Logger *zap.Logger

	snap    atomic.Pointer[CFSnapshot]
	version atomic.Int64
}

// CFSnapshot 是一次构建产出的不可变模型快照：
// 交互矩阵（稀疏行存储）、物品相似度矩阵与稠密 0..N 的 ID 映射。
type CFSnapshot struct {
	Version int64
	BuiltAt time.Time

	// CandidateIDs / JobIDs 按字典序升序，下标即矩阵索引
	CandidateIDs []string
	JobIDs       []string

	candidateIndex map[string]int
	jobIndex       map[string]int

	// ratings[candidateIdx][jobIdx] = 聚合评分；稀疏行存储
	ratings []map[int]float64

	// itemSim[i][j] = 职位 i 与 j 的余弦相似度，对角线强制为 0
	itemSim [][]float64

	// nonZero 非零单元数，用于稀疏度统计
	nonZero int
}

func (m *ItemCF) logger() *zap.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return zap.NewNop()
}

// Snapshot 返回当前模型快照；未构建时返回 nil。
func (m *ItemCF) Snapshot() *CFSnapshot {
	return m.snap.Load()
}

// Version 返回当前模型版本号；0 表示从未构建。
func (m *ItemCF) Version() int64 {
	return m.version.Load()
}

// Build 从行为事件构建模型并原子替换当前快照。
// 事件集为空时返回 INSUFFICIENT_DATA，保持旧快照不变。
func (m *ItemCF) Build(interactions []core.Interaction) error {
	snap, err := buildSnapshot(interactions)
	if err != nil {
		return err
	}

	snap.Version = m.version.Add(1)
	m.snap.Store(snap)

	m.logger().Info("cf model built",
		zap.Int64("version", snap.Version),
		zap.Int("candidates", len(snap.CandidateIDs)),
		zap.Int("jobs", len(snap.JobIDs)),
		zap.Float64("sparsity", snap.Sparsity()))
	return nil
}

// Rebuild 从 InteractionStore 全量读取事件并重建模型。
// 重建节奏是外部运维决策，引擎不自动触发。
func (m *ItemCF) Rebuild(ctx context.Context) error {
	if m.Store == nil {
		return core.NewDomainError(core.ModuleRecall, core.ErrorCodeInsufficientData,
			"cf: no interaction store configured")
	}
	interactions, err := m.Store.Interactions(ctx)
	if err != nil {
		return err
	}
	return m.Build(interactions)
}

func buildSnapshot(interactions []core.Interaction) (*CFSnapshot, error) {
	if len(interactions) == 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInsufficientData,
			"cf: interaction set is empty")
	}

	// 同一 (求职者, 职位) 的多条事件累加为一个聚合评分
	type pair struct{ candidate, job string }
	aggregated := make(map[pair]float64)
	candidateSet := make(map[string]struct{})
	jobSet := make(map[string]struct{})

	for _, it := range interactions {
		rating := it.EffectiveRating()
		if rating == 0 || it.CandidateID == "" || it.JobID == "" {
			continue
		}
		aggregated[pair{it.CandidateID, it.JobID}] += rating
		candidateSet[it.CandidateID] = struct{}{}
		jobSet[it.JobID] = struct{}{}
	}

	if len(aggregated) == 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInsufficientData,
			"cf: no usable interactions")
	}

	// 稠密分配 0..N 索引：对观测到的不同 ID 排序后逐个编号
	candidateIDs := make([]string, 0, len(candidateSet))
	for id := range candidateSet {
		candidateIDs = append(candidateIDs, id)
	}
	sort.Strings(candidateIDs)

	jobIDs := make([]string, 0, len(jobSet))
	for id := range jobSet {
		jobIDs = append(jobIDs, id)
	}
	sort.Strings(jobIDs)

	candidateIndex := make(map[string]int, len(candidateIDs))
	for i, id := range candidateIDs {
		candidateIndex[id] = i
	}
	jobIndex := make(map[string]int, len(jobIDs))
	for i, id := range jobIDs {
		jobIndex[id] = i
	}

	ratings := make([]map[int]float64, len(candidateIDs))
	for i := range ratings {
		ratings[i] = make(map[int]float64)
	}
	for p, rating := range aggregated {
		ratings[candidateIndex[p.candidate]][jobIndex[p.job]] = rating
	}

	snap := &CFSnapshot{
		BuiltAt:        time.Now(),
		CandidateIDs:   candidateIDs,
		JobIDs:         jobIDs,
		candidateIndex: candidateIndex,
		jobIndex:       jobIndex,
		ratings:        ratings,
		nonZero:        len(aggregated),
	}
	snap.itemSim = computeItemSimilarity(ratings, len(jobIDs))

	return snap, nil
}

// computeItemSimilarity 以职位列向量（求职者维度）两两计算余弦相似度。
// 自相似度强制为 0，避免预测时职位给自己加权。
func computeItemSimilarity(ratings []map[int]float64, nJobs int) [][]float64 {
	// 转置为职位列：columns[jobIdx] = {candidateIdx: rating}
	columns := make([]map[int]float64, nJobs)
	for j := range columns {
		columns[j] = make(map[int]float64)
	}
	for cIdx, row := range ratings {
		for jIdx, rating := range row {
			columns[jIdx][cIdx] = rating
		}
	}

	sim := make([][]float64, nJobs)
	for i := range sim {
		sim[i] = make([]float64, nJobs)
	}
	for i := 0; i < nJobs; i++ {
		for j := i + 1; j < nJobs; j++ {
			s := vectormath.CosineSparse(columns[i], columns[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}

// RecommendForCandidate 为求职者预测未交互职位的评分并返回 TopN。
//
// 预测公式（相似度加权平均）：
//
//	predicted[j] = Σ_k sim[j][k]*rating[k] / Σ_k |sim[j][k]|，k 遍历该求职者已评分职位
//
// 分母为 0（与已评分职位无重叠）的职位预测为 0 并被排除。
// excludeInteracted 为 true 时，已评分职位被强制压到 -∞，不会再出现。
// 模型未构建返回 INSUFFICIENT_DATA；求职者不在矩阵中返回空列表（冷启动）。
func (m *ItemCF) RecommendForCandidate(
	candidateID string,
	topN int,
	excludeInteracted bool,
) ([]*core.Candidate, error) {
	if topN <= 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidArgument,
			"cf: top_n must be positive")
	}

	snap := m.snap.Load()
	if snap == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInsufficientData,
			"cf: model not built")
	}
	return snap.RecommendForCandidate(candidateID, topN, excludeInteracted)
}

// RecommendForCandidate 见 ItemCF.RecommendForCandidate；快照版本用于注入式调用。
func (s *CFSnapshot) RecommendForCandidate(
	candidateID string,
	topN int,
	excludeInteracted bool,
) ([]*core.Candidate, error) {
	if topN <= 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidArgument,
			"cf: top_n must be positive")
	}

	cIdx, ok := s.candidateIndex[candidateID]
	if !ok {
		// 冷启动求职者：无行为数据不是错误
		return []*core.Candidate{}, nil
	}
	row := s.ratings[cIdx]

	out := make([]*core.Candidate, 0, topN)
	for jIdx, jobID := range s.JobIDs {
		if _, rated := row[jIdx]; rated && excludeInteracted {
			continue
		}

		var numerator, denominator float64
		for kIdx, rating := range row {
			w := s.itemSim[jIdx][kIdx]
			numerator += w * rating
			if w < 0 {
				denominator += -w
			} else {
				denominator += w
			}
		}
		if denominator == 0 {
			// 与已评分职位无重叠：预测为 0，直接排除
			continue
		}
		predicted := numerator / denominator
		if predicted <= 0 {
			continue
		}

		c := core.NewCandidate(jobID)
		c.SetCF(predicted)
		c.Source = core.SourceCollaborative
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CFScore != out[j].CFScore {
			return out[i].CFScore > out[j].CFScore
		}
		return out[i].JobID < out[j].JobID
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// SimilarJob 是"相似职位"查询的结果项。
type SimilarJob struct {
	JobID      string
	Similarity float64
}

// SimilarItems 返回与指定职位原始物品相似度最高的 TopN 职位，与求职者无关。
// 用于"相似职位"功能。未知职位返回空列表。
func (m *ItemCF) SimilarItems(jobID string, topN int) ([]SimilarJob, error) {
	if topN <= 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidArgument,
			"cf: top_n must be positive")
	}

	snap := m.snap.Load()
	if snap == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInsufficientData,
			"cf: model not built")
	}

	jIdx, ok := snap.jobIndex[jobID]
	if !ok {
		return []SimilarJob{}, nil
	}

	sims := snap.itemSim[jIdx]
	out := make([]SimilarJob, 0, topN)
	for k, s := range sims {
		if s <= 0 {
			continue
		}
		out = append(out, SimilarJob{JobID: snap.JobIDs[k], Similarity: s})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].JobID < out[j].JobID
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// Rating 返回快照中 (candidateID, jobID) 的聚合评分；不存在时返回 (0, false)。
func (s *CFSnapshot) Rating(candidateID, jobID string) (float64, bool) {
	cIdx, ok := s.candidateIndex[candidateID]
	if !ok {
		return 0, false
	}
	jIdx, ok := s.jobIndex[jobID]
	if !ok {
		return 0, false
	}
	r, ok := s.ratings[cIdx][jIdx]
	return r, ok
}

// ItemSimilarity 返回快照中两个职位的相似度；任一职位未知时返回 (0, false)。
func (s *CFSnapshot) ItemSimilarity(jobA, jobB string) (float64, bool) {
	a, ok := s.jobIndex[jobA]
	if !ok {
		return 0, false
	}
	b, ok := s.jobIndex[jobB]
	if !ok {
		return 0, false
	}
	return s.itemSim[a][b], true
}

// NonZero 返回交互矩阵的非零单元数。
func (s *CFSnapshot) NonZero() int { return s.nonZero }

// Sparsity 返回交互矩阵的稀疏度：1 - 非零单元占比。
func (s *CFSnapshot) Sparsity() float64 {
	total := len(s.CandidateIDs) * len(s.JobIDs)
	if total == 0 {
		return 1.0
	}
	return 1.0 - float64(s.nonZero)/float64(total)
}

// Shape 返回交互矩阵形状，形如 "12x340"。
func (s *CFSnapshot) Shape() string {
	return fmt.Sprintf("%dx%d", len(s.CandidateIDs), len(s.JobIDs))
}
