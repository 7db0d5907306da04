package recall

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/store"
)

func seededAdapter(t *testing.T) *StoreAdapter {
	t.Helper()
	a := NewStoreAdapter(store.NewMemoryStore(), "test")
	ctx := context.Background()

	err := SeedEmbeddings(ctx, a,
		map[string][]float64{"c1": {1, 0}},
		map[string][]float64{
			"j1": {1, 0},
			"j2": {0.8, 0.2},
			"j3": {0, 1},
		})
	if err != nil {
		t.Fatalf("SeedEmbeddings() error = %v", err)
	}

	err = SeedInteractions(ctx, a, []core.Interaction{
		{CandidateID: "c1", JobID: "j1", Kind: core.InteractionApply},
		{CandidateID: "c2", JobID: "j1", Kind: core.InteractionView},
		{CandidateID: "c2", JobID: "j3", Kind: core.InteractionApply},
	})
	if err != nil {
		t.Fatalf("SeedInteractions() error = %v", err)
	}

	viewedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	postedAt := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	err = SeedActivity(ctx, a,
		map[string]map[string]time.Time{"c1": {"j1": viewedAt}},
		map[string]time.Time{"j1": postedAt, "j2": postedAt})
	if err != nil {
		t.Fatalf("SeedActivity() error = %v", err)
	}
	return a
}

func TestStoreAdapterEmbeddings(t *testing.T) {
	a := seededAdapter(t)
	ctx := context.Background()

	emb, err := a.CandidateEmbedding(ctx, "c1")
	if err != nil {
		t.Fatalf("CandidateEmbedding() error = %v", err)
	}
	if len(emb) != 2 || emb[0] != 1 || emb[1] != 0 {
		t.Fatalf("CandidateEmbedding = %v, want [1 0]", emb)
	}

	if _, err := a.CandidateEmbedding(ctx, "ghost"); !core.IsNotFound(err) {
		t.Fatalf("unknown candidate: err = %v, want NOT_FOUND", err)
	}

	all, err := a.JobEmbeddings(ctx)
	if err != nil {
		t.Fatalf("JobEmbeddings() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("JobEmbeddings() returned %d jobs, want 3", len(all))
	}

	subset, err := a.JobEmbeddings(ctx, "j1", "j3", "ghost")
	if err != nil {
		t.Fatalf("JobEmbeddings(subset) error = %v", err)
	}
	if len(subset) != 2 {
		t.Fatalf("subset returned %d jobs, want 2 (unknown id skipped)", len(subset))
	}
}

func TestStoreAdapterInteractionsAndActivity(t *testing.T) {
	a := seededAdapter(t)
	ctx := context.Background()

	interactions, err := a.Interactions(ctx)
	if err != nil {
		t.Fatalf("Interactions() error = %v", err)
	}
	if len(interactions) != 3 {
		t.Fatalf("Interactions() returned %d events, want 3", len(interactions))
	}
	if interactions[0].Kind != core.InteractionApply {
		t.Errorf("first event kind = %s, want apply", interactions[0].Kind)
	}

	viewed, err := a.LastViewed(ctx, "c1", []string{"j1", "j2"})
	if err != nil {
		t.Fatalf("LastViewed() error = %v", err)
	}
	if len(viewed) != 1 {
		t.Fatalf("LastViewed() returned %d entries, want 1", len(viewed))
	}
	if _, ok := viewed["j1"]; !ok {
		t.Error("LastViewed missing j1")
	}

	posted, err := a.JobPostedAt(ctx, []string{"j1", "j3"})
	if err != nil {
		t.Fatalf("JobPostedAt() error = %v", err)
	}
	// j3 无发布时间，不出现在结果里
	if len(posted) != 1 {
		t.Fatalf("JobPostedAt() returned %d entries, want 1", len(posted))
	}
}

func TestStoreAdapterEmptyStore(t *testing.T) {
	a := NewStoreAdapter(store.NewMemoryStore(), "")
	ctx := context.Background()

	if a.KeyPrefix != "jobrec" {
		t.Errorf("KeyPrefix = %q, want default jobrec", a.KeyPrefix)
	}

	jobs, err := a.JobEmbeddings(ctx)
	if err != nil || len(jobs) != 0 {
		t.Fatalf("JobEmbeddings on empty store = %v, %v, want empty", jobs, err)
	}
	interactions, err := a.Interactions(ctx)
	if err != nil || len(interactions) != 0 {
		t.Fatalf("Interactions on empty store = %v, %v, want empty", interactions, err)
	}
	viewed, err := a.LastViewed(ctx, "c1", []string{"j1"})
	if err != nil || len(viewed) != 0 {
		t.Fatalf("LastViewed on empty store = %v, %v, want empty", viewed, err)
	}
}

// 适配器作为召回数据源的端到端：content 排序 + 协同过滤重建都走 Store。
func TestStoreAdapterBacksRecallPaths(t *testing.T) {
	a := seededAdapter(t)
	ctx := context.Background()

	content := &ContentRecall{Embeddings: a, TopK: 10}
	rctx := &core.RecommendContext{CandidateID: "c1"}
	got, err := content.Recall(ctx, rctx)
	if err != nil {
		t.Fatalf("content Recall() error = %v", err)
	}
	if len(got) != 3 || got[0].JobID != "j1" {
		t.Fatalf("content Recall = %v, want j1 first of 3", candidateJobIDs(got))
	}

	cf := &ItemCF{Store: a}
	if err := cf.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if cf.Snapshot().Shape() != "2x2" {
		t.Fatalf("Shape = %s, want 2x2", cf.Snapshot().Shape())
	}

	recs, err := cf.RecommendForCandidate("c1", 10, true)
	if err != nil {
		t.Fatalf("RecommendForCandidate() error = %v", err)
	}
	if len(recs) != 1 || recs[0].JobID != "j3" {
		t.Fatalf("cf recommendations = %v, want only j3", candidateJobIDs(recs))
	}
}

func candidateJobIDs(list []*core.Candidate) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.JobID
	}
	return out
}
