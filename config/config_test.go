package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/pipeline"
	"github.com/rushteam/jobrec/store"
)

const pipelineYAML = `
pipeline:
  name: jobrec
  nodes:
    - type: fusion.hybrid
      config:
        strategy: weighted
        content_weight: 1.0
        cf_weight: 0.0
        pool_size: 10
        top_n: 5
    - type: filter
      config:
        filters:
          - type: blacklist
            job_ids: ["j-banned"]
    - type: rerank.diversity_novelty
      config:
        mmr_lambda: 0.5
        diversity_weight: 0.25
        novelty_weight: 0.25
        top_n: 3
    - type: rerank.topn
      config:
        n: 2
`

func TestBuildPipelineFromYAML(t *testing.T) {
	idx := store.NewMemoryEmbeddingIndex()
	idx.SetCandidateEmbedding("c1", []float64{1, 0})
	idx.SetJobEmbedding("j1", []float64{1, 0})
	idx.SetJobEmbedding("j2", []float64{0.9, 0.1})
	idx.SetJobEmbedding("j3", []float64{0, 1})
	idx.SetJobEmbedding("j-banned", []float64{1, 0.01})

	RegisterBuiltins(Deps{
		Embeddings:   idx,
		Interactions: idx,
		Activity:     idx,
	})

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(pipelineYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := pipeline.LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("ValidatePipelineConfig() error = %v", err)
	}

	p, err := cfg.BuildPipeline(DefaultFactory())
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}

	// 请求级参数覆盖配置默认值：λ=1 让重排退化为纯相关性，结果可确定
	rctx := &core.RecommendContext{
		CandidateID: "c1",
		Params:      map[string]any{"mmr_lambda": 1.0},
	}
	out, err := p.Run(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 融合取 5、黑名单剔除 j-banned、重排取 3、截断到 2
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2 after topn truncation", len(out))
	}
	for _, c := range out {
		if c.JobID == "j-banned" {
			t.Error("blacklisted job survived the filter")
		}
	}
	if out[0].JobID != "j1" {
		t.Errorf("top = %s, want j1", out[0].JobID)
	}
	if !out[0].HasFinal || out[0].DiversityScore == 0 {
		t.Errorf("rerank stage did not score the top candidate: %+v", out[0])
	}
}

func TestValidatePipelineConfigUnknownType(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "rank.dnn"}}
	if err := ValidatePipelineConfig(cfg); err == nil {
		t.Error("expected error for unregistered node type")
	}
}
