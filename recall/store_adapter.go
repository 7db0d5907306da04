package recall

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rushteam/jobrec/core"
)

// StoreAdapter 是基于 core.Store 接口的召回数据存储适配器。
// 同时实现 core.EmbeddingStore、core.InteractionStore、core.ActivityStore，
// 从 Redis/内存等存储中读取召回所需的数据。
//
// key 约定：
//
//	求职者向量：  {KeyPrefix}:candidate:{candidateID}
//	职位向量集合：{KeyPrefix}:jobs               （map[jobID][]float64 JSON）
//	行为事件：    {KeyPrefix}:interactions       （[]core.Interaction JSON）
//	最近浏览：    {KeyPrefix}:viewed:{candidateID}（map[jobID]RFC3339 JSON）
//	发布时间：    {KeyPrefix}:posted             （map[jobID]RFC3339 JSON）
type StoreAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀
	KeyPrefix string
}

// NewStoreAdapter 创建一个基于 core.Store 的召回数据适配器。
func NewStoreAdapter(s core.Store, keyPrefix string) *StoreAdapter {
	if keyPrefix == "" {
		keyPrefix = "jobrec"
	}
	return &StoreAdapter{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

// Name 实现各领域接口
func (a *StoreAdapter) Name() string {
	return "store_adapter"
}

// CandidateEmbedding 实现 core.EmbeddingStore 接口。
// key 不存在时返回 NOT_FOUND 领域错误（请求级失败，由引擎入口处理）。
func (a *StoreAdapter) CandidateEmbedding(ctx context.Context, candidateID string) ([]float64, error) {
	key := a.KeyPrefix + ":candidate:" + candidateID
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeNotFound,
				"recall: candidate embedding not found: "+candidateID)
		}
		return nil, err
	}

	var emb []float64
	if err := json.Unmarshal(data, &emb); err != nil {
		return nil, err
	}
	return emb, nil
}

// JobEmbeddings 实现 core.EmbeddingStore 接口。
// jobIDs 为空时返回全部职位向量。
func (a *StoreAdapter) JobEmbeddings(ctx context.Context, jobIDs ...string) ([]core.JobEmbedding, error) {
	key := a.KeyPrefix + ":jobs"
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []core.JobEmbedding{}, nil
		}
		return nil, err
	}

	var all map[string][]float64
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	if len(jobIDs) == 0 {
		out := make([]core.JobEmbedding, 0, len(all))
		for id, vec := range all {
			out = append(out, core.JobEmbedding{JobID: id, Vector: vec})
		}
		return out, nil
	}

	out := make([]core.JobEmbedding, 0, len(jobIDs))
	for _, id := range jobIDs {
		if vec, ok := all[id]; ok {
			out = append(out, core.JobEmbedding{JobID: id, Vector: vec})
		}
	}
	return out, nil
}

// Interactions 实现 core.InteractionStore 接口。
func (a *StoreAdapter) Interactions(ctx context.Context) ([]core.Interaction, error) {
	key := a.KeyPrefix + ":interactions"
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []core.Interaction{}, nil
		}
		return nil, err
	}

	var out []core.Interaction
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LastViewed 实现 core.ActivityStore 接口。
func (a *StoreAdapter) LastViewed(ctx context.Context, candidateID string, jobIDs []string) (map[string]time.Time, error) {
	key := a.KeyPrefix + ":viewed:" + candidateID
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return map[string]time.Time{}, nil
		}
		return nil, err
	}

	var all map[string]time.Time
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	out := make(map[string]time.Time, len(jobIDs))
	for _, id := range jobIDs {
		if ts, ok := all[id]; ok {
			out[id] = ts
		}
	}
	return out, nil
}

// JobPostedAt 实现 core.ActivityStore 接口。
func (a *StoreAdapter) JobPostedAt(ctx context.Context, jobIDs []string) (map[string]time.Time, error) {
	key := a.KeyPrefix + ":posted"
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return map[string]time.Time{}, nil
		}
		return nil, err
	}

	var all map[string]time.Time
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	out := make(map[string]time.Time, len(jobIDs))
	for _, id := range jobIDs {
		if ts, ok := all[id]; ok {
			out[id] = ts
		}
	}
	return out, nil
}

// 确保实现领域接口
var (
	_ core.EmbeddingStore   = (*StoreAdapter)(nil)
	_ core.InteractionStore = (*StoreAdapter)(nil)
	_ core.ActivityStore    = (*StoreAdapter)(nil)
)

// SeedEmbeddings 辅助函数：向 Store 写入求职者/职位向量（测试与原型用）。
func SeedEmbeddings(ctx context.Context, a *StoreAdapter, candidates map[string][]float64, jobs map[string][]float64) error {
	for id, vec := range candidates {
		data, err := json.Marshal(vec)
		if err != nil {
			return err
		}
		if err := a.store.Set(ctx, a.KeyPrefix+":candidate:"+id, data); err != nil {
			return err
		}
	}
	if jobs != nil {
		data, err := json.Marshal(jobs)
		if err != nil {
			return err
		}
		if err := a.store.Set(ctx, a.KeyPrefix+":jobs", data); err != nil {
			return err
		}
	}
	return nil
}

// SeedInteractions 辅助函数：向 Store 写入行为事件（测试与原型用）。
func SeedInteractions(ctx context.Context, a *StoreAdapter, interactions []core.Interaction) error {
	data, err := json.Marshal(interactions)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.KeyPrefix+":interactions", data)
}

// SeedActivity 辅助函数：向 Store 写入浏览时间与发布时间（测试与原型用）。
func SeedActivity(ctx context.Context, a *StoreAdapter, viewed map[string]map[string]time.Time, posted map[string]time.Time) error {
	for candidateID, jobs := range viewed {
		data, err := json.Marshal(jobs)
		if err != nil {
			return err
		}
		if err := a.store.Set(ctx, a.KeyPrefix+":viewed:"+candidateID, data); err != nil {
			return err
		}
	}
	if posted != nil {
		data, err := json.Marshal(posted)
		if err != nil {
			return err
		}
		if err := a.store.Set(ctx, a.KeyPrefix+":posted", data); err != nil {
			return err
		}
	}
	return nil
}
