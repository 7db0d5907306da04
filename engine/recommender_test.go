package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/recall"
	"github.com/rushteam/jobrec/store"
)

func newIndex() *store.MemoryEmbeddingIndex {
	idx := store.NewMemoryEmbeddingIndex()
	idx.SetCandidateEmbedding("c1", []float64{1, 0})
	idx.SetJobEmbedding("job-a", []float64{1, 0})
	idx.SetJobEmbedding("job-b", []float64{0, 1})
	return idx
}

// 端到端场景：画像 [1,0]，A:[1,0]，B:[0,1]，weighted(1,0)，无协同过滤数据
// → [A, B]，hybrid 分别为 1.0 / 0.0。
func TestRecommendWeightedContentOnly(t *testing.T) {
	r := NewRecommender(newIndex(), nil)

	got, err := r.Recommend(context.Background(), Request{
		CandidateID:   "c1",
		TopN:          2,
		Strategy:      "weighted",
		ContentWeight: 1,
		CFWeight:      0,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 2 || got[0].JobID != "job-a" || got[1].JobID != "job-b" {
		t.Fatalf("result = %v, want [job-a job-b]", got)
	}
	if got[0].HybridScore != 1.0 || got[1].HybridScore != 0.0 {
		t.Errorf("hybrid = %v/%v, want 1.0/0.0", got[0].HybridScore, got[1].HybridScore)
	}
}

// top_n=0 对每种策略都必须在任何计算前拒绝。
func TestRecommendTopNZero(t *testing.T) {
	r := NewRecommender(newIndex(), nil)
	for _, strategy := range []string{"weighted", "cascade", "mixed"} {
		_, err := r.Recommend(context.Background(), Request{
			CandidateID: "c1",
			TopN:        0,
			Strategy:    strategy,
		})
		if !core.IsInvalidArgument(err) {
			t.Errorf("strategy %s: err = %v, want INVALID_ARGUMENT", strategy, err)
		}
	}
}

func TestRecommendBoundaryValidation(t *testing.T) {
	r := NewRecommender(newIndex(), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
	}{
		{"missing candidate id", Request{TopN: 5}},
		{"top_n over limit", Request{CandidateID: "c1", TopN: 51}},
		{"unknown strategy", Request{CandidateID: "c1", TopN: 5, Strategy: "popularity"}},
		{"content weight out of range", Request{CandidateID: "c1", TopN: 5, ContentWeight: 1.5}},
		{"negative lambda", Request{CandidateID: "c1", TopN: 5, MMRLambda: -0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Recommend(ctx, tt.req); !core.IsInvalidArgument(err) {
				t.Errorf("err = %v, want INVALID_ARGUMENT", err)
			}
		})
	}
}

func TestRecommendUnknownCandidate(t *testing.T) {
	r := NewRecommender(newIndex(), nil)
	_, err := r.Recommend(context.Background(), Request{
		CandidateID: "c-ghost",
		TopN:        2,
	})
	if !core.IsNotFound(err) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

// 协同过滤模型未构建时降级为 content-only，而不是整个请求失败。
func TestRecommendDegradesWithoutCFModel(t *testing.T) {
	cf := &recall.ItemCF{}
	r := NewRecommender(newIndex(), cf)

	got, err := r.Recommend(context.Background(), Request{
		CandidateID:   "c1",
		TopN:          2,
		ContentWeight: 1,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want content-only 2", len(got))
	}
	for _, c := range got {
		if c.HasCF {
			t.Errorf("job %s carries cf signal from unbuilt model", c.JobID)
		}
	}
}

// 构建后两路都产出：协同过滤为 c1 预测 c2 交互过的职位。
func TestRecommendHybridWithCF(t *testing.T) {
	idx := newIndex()
	idx.SetJobEmbedding("job-c", []float64{0.5, 0.5})
	now := time.Now()
	for _, it := range []core.Interaction{
		{CandidateID: "c1", JobID: "job-a", Kind: core.InteractionApply, OccurredAt: now},
		{CandidateID: "c2", JobID: "job-a", Kind: core.InteractionSave, OccurredAt: now},
		{CandidateID: "c2", JobID: "job-c", Kind: core.InteractionApply, OccurredAt: now},
	} {
		idx.AddInteraction(it)
	}

	cf := &recall.ItemCF{Store: idx}
	if err := cf.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	r := NewRecommender(idx, cf)
	got, err := r.Recommend(context.Background(), Request{
		CandidateID:   "c1",
		TopN:          3,
		Strategy:      "cascade",
		ContentWeight: 0.6,
		CFWeight:      0.4,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// cascade：content 路 3 条填满（job-a/job-c/job-b），协同过滤不再补位
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].JobID != "job-a" {
		t.Errorf("top = %s, want job-a (cosine 1.0)", got[0].JobID)
	}
}

func TestRecommendWithDiversity(t *testing.T) {
	idx := newIndex()
	idx.SetJobPostedAt("job-a", time.Now().AddDate(0, 0, -5))
	idx.SetJobPostedAt("job-b", time.Now().AddDate(0, 0, -5))

	r := NewRecommender(idx, nil, WithActivityStore(idx))
	got, err := r.Recommend(context.Background(), Request{
		CandidateID:     "c1",
		TopN:            2,
		ContentWeight:   1,
		EnableDiversity: true,
		MMRLambda:       1.0,
		DiversityWeight: 0.2,
		NoveltyWeight:   0.2,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, c := range got {
		if !c.HasFinal {
			t.Errorf("job %s missing final score", c.JobID)
		}
		// 从未看过 + 5 天新帖 → novelty 正好 1.0
		if c.NoveltyScore != 1.0 {
			t.Errorf("job %s novelty = %v, want 1.0", c.JobID, c.NoveltyScore)
		}
	}
	// λ=1 下 MMR 退化为纯相关性：job-a 仍在首位
	if got[0].JobID != "job-a" {
		t.Errorf("top = %s, want job-a", got[0].JobID)
	}
}

func TestStats(t *testing.T) {
	idx := newIndex()
	now := time.Now()
	// 2×2 交互矩阵场景
	for _, it := range []core.Interaction{
		{CandidateID: "c1", JobID: "j1", Kind: core.InteractionApply, OccurredAt: now},
		{CandidateID: "c1", JobID: "j2", Kind: core.InteractionView, OccurredAt: now},
		{CandidateID: "c2", JobID: "j1", Kind: core.InteractionView, OccurredAt: now},
		{CandidateID: "c2", JobID: "j2", Kind: core.InteractionApply, OccurredAt: now},
	} {
		idx.AddInteraction(it)
	}
	cf := &recall.ItemCF{Store: idx}
	if err := cf.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	r := NewRecommender(idx, cf)
	s, err := r.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.ContentCandidatesIndexed != 2 {
		t.Errorf("indexed = %d, want 2", s.ContentCandidatesIndexed)
	}
	if s.CFMatrixShape != "2x2" {
		t.Errorf("shape = %s, want 2x2", s.CFMatrixShape)
	}
	if s.CFSparsity != 0 {
		t.Errorf("sparsity = %v, want 0 (all four cells filled)", s.CFSparsity)
	}
	if s.CFModelVersion != 1 {
		t.Errorf("version = %d, want 1", s.CFModelVersion)
	}
	if len(s.StrategiesAvailable) != 3 {
		t.Errorf("strategies = %v", s.StrategiesAvailable)
	}
}

func TestRebuildBumpsVersion(t *testing.T) {
	idx := newIndex()
	idx.AddInteraction(core.Interaction{
		CandidateID: "c1", JobID: "j1", Kind: core.InteractionView, OccurredAt: time.Now(),
	})
	cf := &recall.ItemCF{Store: idx}
	r := NewRecommender(idx, cf)

	if err := r.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if err := r.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if v := cf.Version(); v != 2 {
		t.Errorf("version = %d, want 2 after two rebuilds", v)
	}
}
