package rerank

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/jobrec/core"
)

const (
	// defaultDecayDays 用户新颖性衰减窗口（天）
	defaultDecayDays = 30
	// recencyFreshDays 职位发布后的"新鲜期"（天）
	recencyFreshDays = 30
	// recencyDecaySpan 新鲜期之后的线性衰减跨度（天）
	recencyDecaySpan = 180
	// recencyFloor 发布时间衰减的下限
	recencyFloor = 0.5
	// recencyUnknown 发布时间缺失时的保守默认值
	recencyUnknown = 0.7
	// noveltyUnavailable 新颖性数据源不可用时整体回退值
	noveltyUnavailable = 0.5

	userNoveltyWeight = 0.6
	recencyWeight     = 0.4
)

// NoveltyScorer 按"求职者是否看过该职位 + 职位发布时长"给候选打新颖性分。
//
// 打分规则：
//   - user_novelty = 1.0（从未看过）或 min(天数/衰减窗口, 1.0)
//   - recency = 1.0（发布 ≤30 天）或 max(0.5, 1 − (age−30)/180)；发布时间缺失取 0.7
//   - novelty = 0.6*user_novelty + 0.4*recency
//   - 数据源不可用时所有候选回退 novelty = 0.5，不让整个请求失败
type NoveltyScorer struct {
	Activity core.ActivityStore

	// DecayDays 用户新颖性衰减窗口（天），<=0 时取默认 30 天
	DecayDays int

	Logger *zap.Logger

	// now 可注入，便于测试
	now func() time.Time
}

// Score 为 list 中每条候选写入 UserNovelty / RecencyFactor / NoveltyScore。
func (s *NoveltyScorer) Score(ctx context.Context, candidateID string, list []*core.Candidate) {
	if len(list) == 0 {
		return
	}
	if s.Activity == nil {
		s.fallback(list)
		return
	}

	jobIDs := make([]string, len(list))
	for i, c := range list {
		jobIDs[i] = c.JobID
	}

	lastViewed, err := s.Activity.LastViewed(ctx, candidateID, jobIDs)
	if err != nil {
		s.logger().Warn("novelty source unavailable, falling back",
			zap.String("candidate_id", candidateID),
			zap.Error(err))
		s.fallback(list)
		return
	}
	postedAt, err := s.Activity.JobPostedAt(ctx, jobIDs)
	if err != nil {
		s.logger().Warn("posting-age source unavailable, falling back",
			zap.String("candidate_id", candidateID),
			zap.Error(err))
		s.fallback(list)
		return
	}

	now := s.nowFunc()()
	decay := float64(s.decayDays())
	for _, c := range list {
		c.UserNovelty = userNovelty(now, lastViewed, c.JobID, decay)
		c.RecencyFactor = recencyFactor(now, postedAt, c.JobID)
		c.NoveltyScore = userNoveltyWeight*c.UserNovelty + recencyWeight*c.RecencyFactor
	}
}

func userNovelty(now time.Time, lastViewed map[string]time.Time, jobID string, decayDays float64) float64 {
	viewedAt, ok := lastViewed[jobID]
	if !ok {
		return 1.0
	}
	days := now.Sub(viewedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	n := days / decayDays
	if n > 1.0 {
		return 1.0
	}
	return n
}

func recencyFactor(now time.Time, postedAt map[string]time.Time, jobID string) float64 {
	posted, ok := postedAt[jobID]
	if !ok {
		return recencyUnknown
	}
	ageDays := now.Sub(posted).Hours() / 24
	if ageDays <= recencyFreshDays {
		return 1.0
	}
	r := 1.0 - (ageDays-recencyFreshDays)/recencyDecaySpan
	if r < recencyFloor {
		return recencyFloor
	}
	return r
}

func (s *NoveltyScorer) fallback(list []*core.Candidate) {
	for _, c := range list {
		c.NoveltyScore = noveltyUnavailable
	}
}

func (s *NoveltyScorer) decayDays() int {
	if s.DecayDays > 0 {
		return s.DecayDays
	}
	return defaultDecayDays
}

func (s *NoveltyScorer) nowFunc() func() time.Time {
	if s.now != nil {
		return s.now
	}
	return time.Now
}

func (s *NoveltyScorer) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
