package filter

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/jobrec/core"
)

// fakeInteractions 是测试用的 InteractionStore。
type fakeInteractions struct {
	list []core.Interaction
}

func (f *fakeInteractions) Name() string { return "fake" }
func (f *fakeInteractions) Interactions(_ context.Context) ([]core.Interaction, error) {
	return f.list, nil
}

func TestSeenFilterOnlyAppliedJobs(t *testing.T) {
	store := &fakeInteractions{list: []core.Interaction{
		{CandidateID: "c1", JobID: "j-applied", Kind: core.InteractionApply, OccurredAt: time.Now()},
		{CandidateID: "c1", JobID: "j-viewed", Kind: core.InteractionView, OccurredAt: time.Now()},
		{CandidateID: "c2", JobID: "j-other", Kind: core.InteractionApply, OccurredAt: time.Now()},
	}}
	f := NewSeenFilter(store)
	rctx := &core.RecommendContext{CandidateID: "c1"}

	tests := []struct {
		jobID string
		want  bool
	}{
		{"j-applied", true},  // 自己投递过，剔除
		{"j-viewed", false},  // 只是看过，保留
		{"j-other", false},   // 别人投递的，保留
		{"j-unknown", false}, // 无任何交互
	}
	for _, tt := range tests {
		got, err := f.ShouldFilter(context.Background(), rctx, core.NewCandidate(tt.jobID))
		if err != nil {
			t.Fatalf("ShouldFilter(%s) error = %v", tt.jobID, err)
		}
		if got != tt.want {
			t.Errorf("ShouldFilter(%s) = %v, want %v", tt.jobID, got, tt.want)
		}
	}
}

func TestSeenFilterAllKinds(t *testing.T) {
	store := &fakeInteractions{list: []core.Interaction{
		{CandidateID: "c1", JobID: "j-viewed", Kind: core.InteractionView},
	}}
	f := &SeenFilter{
		Store: store,
		Kinds: []core.InteractionKind{
			core.InteractionView, core.InteractionClick, core.InteractionSave,
			core.InteractionLike, core.InteractionApply,
		},
	}
	got, err := f.ShouldFilter(context.Background(),
		&core.RecommendContext{CandidateID: "c1"}, core.NewCandidate("j-viewed"))
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if !got {
		t.Error("view interaction should filter when all kinds configured")
	}
}

func TestBlacklistFilter(t *testing.T) {
	f := NewBlacklistFilter([]string{"j-banned"}, nil, "")
	banned, _ := f.ShouldFilter(context.Background(), nil, core.NewCandidate("j-banned"))
	if !banned {
		t.Error("blacklisted job not filtered")
	}
	kept, _ := f.ShouldFilter(context.Background(), nil, core.NewCandidate("j-ok"))
	if kept {
		t.Error("clean job filtered")
	}
}

func TestRuleFilter(t *testing.T) {
	lowScore := core.NewCandidate("j-low")
	lowScore.HybridScore = 0.05
	highScore := core.NewCandidate("j-high")
	highScore.HybridScore = 0.9

	f := NewRuleFilter(`candidate.hybrid_score < 0.1`)
	rctx := &core.RecommendContext{CandidateID: "c1"}

	got, err := f.ShouldFilter(context.Background(), rctx, lowScore)
	if err != nil {
		t.Fatalf("ShouldFilter(low) error = %v", err)
	}
	if !got {
		t.Error("low-score candidate should be filtered")
	}

	got, err = f.ShouldFilter(context.Background(), rctx, highScore)
	if err != nil {
		t.Fatalf("ShouldFilter(high) error = %v", err)
	}
	if got {
		t.Error("high-score candidate should be kept")
	}
}

func TestFilterNodeRecordsReason(t *testing.T) {
	node := &FilterNode{Filters: []Filter{
		NewBlacklistFilter([]string{"j-banned"}, nil, ""),
	}}
	in := []*core.Candidate{
		core.NewCandidate("j-banned"),
		core.NewCandidate("j-ok"),
	}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 || out[0].JobID != "j-ok" {
		t.Fatalf("out = %v, want only j-ok", out)
	}
	lbl, ok := in[0].Labels["filtered"]
	if !ok || lbl.Source != "filter.blacklist" {
		t.Errorf("filtered label = %+v, want source filter.blacklist", lbl)
	}
}
