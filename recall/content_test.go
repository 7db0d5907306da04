package recall

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/jobrec/core"
)

func TestRankCorpusOrdersBySimilarity(t *testing.T) {
	r := &ContentRecall{}
	corpus := []core.JobEmbedding{
		{JobID: "j-diag", Vector: []float64{1, 1}},
		{JobID: "j-orth", Vector: []float64{0, 1}},
		{JobID: "j-same", Vector: []float64{1, 0}},
	}

	got, err := r.RankCorpus([]float64{1, 0}, corpus, 10)
	if err != nil {
		t.Fatalf("RankCorpus error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}

	wantOrder := []string{"j-same", "j-diag", "j-orth"}
	for i, id := range wantOrder {
		if got[i].JobID != id {
			t.Fatalf("rank %d = %s, want %s", i, got[i].JobID, id)
		}
	}
	if math.Abs(got[0].ContentSimilarity-1.0) > 1e-9 {
		t.Errorf("j-same similarity = %v, want 1.0", got[0].ContentSimilarity)
	}
	if math.Abs(got[1].ContentSimilarity-1/math.Sqrt2) > 1e-9 {
		t.Errorf("j-diag similarity = %v, want %v", got[1].ContentSimilarity, 1/math.Sqrt2)
	}
	if !got[0].HasContent || got[0].Source != core.SourceContentBased {
		t.Errorf("candidate not marked as content-based: %+v", got[0])
	}
}

func TestRankCorpusTieBreaksByJobID(t *testing.T) {
	r := &ContentRecall{}
	// 三个同向向量：相似度全为 1，顺序必须按职位 ID 升序
	corpus := []core.JobEmbedding{
		{JobID: "j3", Vector: []float64{2, 0}},
		{JobID: "j1", Vector: []float64{5, 0}},
		{JobID: "j2", Vector: []float64{1, 0}},
	}

	got, err := r.RankCorpus([]float64{1, 0}, corpus, 10)
	if err != nil {
		t.Fatalf("RankCorpus error: %v", err)
	}
	for i, want := range []string{"j1", "j2", "j3"} {
		if got[i].JobID != want {
			t.Fatalf("rank %d = %s, want %s", i, got[i].JobID, want)
		}
	}
}

func TestRankCorpusDropsMismatchedDimension(t *testing.T) {
	r := &ContentRecall{}
	corpus := []core.JobEmbedding{
		{JobID: "j-ok", Vector: []float64{1, 0}},
		{JobID: "j-bad", Vector: []float64{1, 0, 0}},
	}

	got, err := r.RankCorpus([]float64{1, 0}, corpus, 10)
	if err != nil {
		t.Fatalf("RankCorpus error: %v", err)
	}
	if len(got) != 1 || got[0].JobID != "j-ok" {
		t.Fatalf("got %+v, want only j-ok", got)
	}
}

func TestRankCorpusTruncatesToTopN(t *testing.T) {
	r := &ContentRecall{}
	corpus := []core.JobEmbedding{
		{JobID: "j1", Vector: []float64{1, 0}},
		{JobID: "j2", Vector: []float64{1, 0.1}},
		{JobID: "j3", Vector: []float64{0, 1}},
	}

	got, err := r.RankCorpus([]float64{1, 0}, corpus, 2)
	if err != nil {
		t.Fatalf("RankCorpus error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].JobID != "j1" || got[1].JobID != "j2" {
		t.Fatalf("top2 = %s, %s", got[0].JobID, got[1].JobID)
	}
}

func TestRankCorpusInvalidArguments(t *testing.T) {
	r := &ContentRecall{}
	corpus := []core.JobEmbedding{{JobID: "j1", Vector: []float64{1, 0}}}

	if _, err := r.RankCorpus([]float64{1, 0}, corpus, 0); !core.IsInvalidArgument(err) {
		t.Errorf("top_n=0: got %v, want INVALID_ARGUMENT", err)
	}
	if _, err := r.RankCorpus(nil, corpus, 5); !core.IsInvalidArgument(err) {
		t.Errorf("empty embedding: got %v, want INVALID_ARGUMENT", err)
	}
}

func TestRankCorpusEmptyCorpus(t *testing.T) {
	r := &ContentRecall{}

	got, err := r.RankCorpus([]float64{1, 0}, nil, 5)
	if err != nil {
		t.Fatalf("RankCorpus error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d candidates, want 0", len(got))
	}
}

// fakeEmbeddings 固定一份求职者/职位向量
type fakeEmbeddings struct {
	candidates map[string][]float64
	jobs       []core.JobEmbedding
}

func (f *fakeEmbeddings) Name() string { return "fake" }

func (f *fakeEmbeddings) CandidateEmbedding(_ context.Context, id string) ([]float64, error) {
	if v, ok := f.candidates[id]; ok {
		return v, nil
	}
	return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound, "candidate not found: "+id)
}

func (f *fakeEmbeddings) JobEmbeddings(_ context.Context, jobIDs ...string) ([]core.JobEmbedding, error) {
	if len(jobIDs) == 0 {
		return f.jobs, nil
	}
	want := make(map[string]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		want[id] = struct{}{}
	}
	var out []core.JobEmbedding
	for _, j := range f.jobs {
		if _, ok := want[j.JobID]; ok {
			out = append(out, j)
		}
	}
	return out, nil
}

func TestRecallLoadsEmbeddingByID(t *testing.T) {
	r := &ContentRecall{
		Embeddings: &fakeEmbeddings{
			candidates: map[string][]float64{"c1": {1, 0}},
			jobs: []core.JobEmbedding{
				{JobID: "j1", Vector: []float64{1, 0}},
				{JobID: "j2", Vector: []float64{0, 1}},
			},
		},
		TopK: 10,
	}

	rctx := &core.RecommendContext{CandidateID: "c1"}
	got, err := r.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recall error: %v", err)
	}
	if len(got) != 2 || got[0].JobID != "j1" {
		t.Fatalf("Recall = %+v", got)
	}
}

func TestRecallUnknownCandidate(t *testing.T) {
	r := &ContentRecall{
		Embeddings: &fakeEmbeddings{candidates: map[string][]float64{}},
		TopK:       10,
	}

	rctx := &core.RecommendContext{CandidateID: "ghost"}
	if _, err := r.Recall(context.Background(), rctx); !core.IsNotFound(err) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
}
