package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/jobrec/core"
)

// MemoryEmbeddingIndex 是内存实现的嵌入索引，同时实现 core.EmbeddingStore、
// core.InteractionStore、core.ActivityStore 三个领域接口。
// 平替 Feast 等在线特征服务，用于测试/开发/原型。
//
// 特点：
//   - 纯内存实现，进程重启后数据丢失
//   - 线程安全，读多写少场景下用 RWMutex
//   - 适用于测试、开发、小规模原型场景
type MemoryEmbeddingIndex struct {
	mu           sync.RWMutex
	candidates   map[string][]float64 // candidate ID -> 画像向量
	jobs         map[string][]float64 // job ID -> 职位向量
	jobOrder     []string             // 保持插入顺序，遍历结果可复现
	interactions []core.Interaction
	lastViewed   map[string]map[string]time.Time // candidate ID -> job ID -> 最近浏览时间
	postedAt     map[string]time.Time            // job ID -> 发布时间
}

// NewMemoryEmbeddingIndex 创建内存嵌入索引实例。
func NewMemoryEmbeddingIndex() *MemoryEmbeddingIndex {
	return &MemoryEmbeddingIndex{
		candidates: make(map[string][]float64),
		jobs:       make(map[string][]float64),
		lastViewed: make(map[string]map[string]time.Time),
		postedAt:   make(map[string]time.Time),
	}
}

func (m *MemoryEmbeddingIndex) Name() string { return "memory_embedding" }

// SetCandidateEmbedding 写入求职者画像向量。
func (m *MemoryEmbeddingIndex) SetCandidateEmbedding(candidateID string, vector []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates[candidateID] = vector
}

// SetJobEmbedding 写入职位向量。重复写入同一职位时保留首次的遍历顺序。
func (m *MemoryEmbeddingIndex) SetJobEmbedding(jobID string, vector []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[jobID]; !ok {
		m.jobOrder = append(m.jobOrder, jobID)
	}
	m.jobs[jobID] = vector
}

// AddInteraction 追加一条行为事件，并同步维护最近浏览时间。
func (m *MemoryEmbeddingIndex) AddInteraction(it core.Interaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, it)

	// view/click 计入最近浏览，新颖性打分使用
	if it.Kind != core.InteractionView && it.Kind != core.InteractionClick {
		return
	}
	viewed := m.lastViewed[it.CandidateID]
	if viewed == nil {
		viewed = make(map[string]time.Time)
		m.lastViewed[it.CandidateID] = viewed
	}
	if it.OccurredAt.After(viewed[it.JobID]) {
		viewed[it.JobID] = it.OccurredAt
	}
}

// SetJobPostedAt 写入职位发布时间。
func (m *MemoryEmbeddingIndex) SetJobPostedAt(jobID string, postedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postedAt[jobID] = postedAt
}

// CandidateEmbedding 实现 core.EmbeddingStore。
func (m *MemoryEmbeddingIndex) CandidateEmbedding(_ context.Context, candidateID string) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vec, ok := m.candidates[candidateID]
	if !ok {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound,
			"store: candidate embedding not found: "+candidateID)
	}
	return vec, nil
}

// JobEmbeddings 实现 core.EmbeddingStore。jobIDs 为空时返回全部职位向量。
func (m *MemoryEmbeddingIndex) JobEmbeddings(_ context.Context, jobIDs ...string) ([]core.JobEmbedding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(jobIDs) == 0 {
		out := make([]core.JobEmbedding, 0, len(m.jobs))
		for _, id := range m.jobOrder {
			out = append(out, core.JobEmbedding{JobID: id, Vector: m.jobs[id]})
		}
		return out, nil
	}

	out := make([]core.JobEmbedding, 0, len(jobIDs))
	for _, id := range jobIDs {
		if vec, ok := m.jobs[id]; ok {
			out = append(out, core.JobEmbedding{JobID: id, Vector: vec})
		}
	}
	return out, nil
}

// Interactions 实现 core.InteractionStore。
func (m *MemoryEmbeddingIndex) Interactions(_ context.Context) ([]core.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Interaction, len(m.interactions))
	copy(out, m.interactions)
	return out, nil
}

// LastViewed 实现 core.ActivityStore。未看过的职位不出现在结果里。
func (m *MemoryEmbeddingIndex) LastViewed(_ context.Context, candidateID string, jobIDs []string) (map[string]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	viewed := m.lastViewed[candidateID]
	out := make(map[string]time.Time, len(jobIDs))
	for _, id := range jobIDs {
		if at, ok := viewed[id]; ok {
			out[id] = at
		}
	}
	return out, nil
}

// JobPostedAt 实现 core.ActivityStore。未知职位不出现在结果里。
func (m *MemoryEmbeddingIndex) JobPostedAt(_ context.Context, jobIDs []string) (map[string]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]time.Time, len(jobIDs))
	for _, id := range jobIDs {
		if at, ok := m.postedAt[id]; ok {
			out[id] = at
		}
	}
	return out, nil
}

var (
	_ core.EmbeddingStore   = (*MemoryEmbeddingIndex)(nil)
	_ core.InteractionStore = (*MemoryEmbeddingIndex)(nil)
	_ core.ActivityStore    = (*MemoryEmbeddingIndex)(nil)
)
