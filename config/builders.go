package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/filter"
	"github.com/rushteam/jobrec/fusion"
	"github.com/rushteam/jobrec/pipeline"
	"github.com/rushteam/jobrec/pkg/conv"
	"github.com/rushteam/jobrec/recall"
	"github.com/rushteam/jobrec/rerank"
)

// Deps 是配置驱动构建 Node 时所需的运行时依赖。
// 配置文件只描述结构与参数，存储与模型实例由调用方注入。
type Deps struct {
	Embeddings   core.EmbeddingStore
	Interactions core.InteractionStore
	Activity     core.ActivityStore
	Store        core.Store
	CF           *recall.ItemCF
	Logger       *zap.Logger
}

// RegisterBuiltins 注册全部内置 Node 构建器。
// 在入口处调用一次，之后 DefaultFactory 即可从配置构建完整流水线。
func RegisterBuiltins(d Deps) {
	Register("fusion.hybrid", buildFusionNode(d))
	Register("filter", buildFilterNode(d))
	Register("rerank.diversity_novelty", buildDiversityNoveltyNode(d))
	Register("rerank.topn", buildTopNNode)
}

func buildFusionNode(d Deps) NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		topK := int(conv.ConfigGetInt64(cfg, "pool_size", 20))

		node := &fusion.Node{
			Content: &recall.ContentRecall{
				Embeddings: d.Embeddings,
				TopK:       topK,
				Logger:     d.Logger,
			},
			DefaultStrategy: fusion.Strategy(conv.ConfigGet(cfg, "strategy", "weighted")),
			DefaultWeights: fusion.Weights{
				Content: conv.ConfigGetFloat64(cfg, "content_weight", 0.6),
				CF:      conv.ConfigGetFloat64(cfg, "cf_weight", 0.4),
			},
			DefaultTopN: int(conv.ConfigGetInt64(cfg, "top_n", 10)),
			Logger:      d.Logger,
		}
		if _, err := fusion.ParseStrategy(string(node.DefaultStrategy)); err != nil {
			return nil, err
		}
		if d.CF != nil {
			node.CF = &recall.CFSource{Model: d.CF, TopK: topK, Logger: d.Logger}
		}
		return node, nil
	}
}

func buildFilterNode(d Deps) NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		filtersConfig, ok := cfg["filters"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("filters not found or invalid")
		}

		filters := make([]filter.Filter, 0, len(filtersConfig))
		for _, fc := range filtersConfig {
			filterMap, ok := fc.(map[string]interface{})
			if !ok {
				continue
			}
			filterType := conv.ConfigGet(filterMap, "type", "")
			switch filterType {
			case "blacklist":
				ids := conv.SliceAnyToString(filterMap["job_ids"])
				if ids == nil {
					ids = []string{}
				}
				key := conv.ConfigGet(filterMap, "key", "")
				var adapter *filter.StoreAdapter
				if d.Store != nil && key != "" {
					adapter = filter.NewStoreAdapter(d.Store)
				}
				filters = append(filters, filter.NewBlacklistFilter(ids, adapter, key))

			case "seen":
				f := filter.NewSeenFilter(d.Interactions)
				if kinds := conv.SliceAnyToString(filterMap["kinds"]); len(kinds) > 0 {
					f.Kinds = f.Kinds[:0]
					for _, k := range kinds {
						f.Kinds = append(f.Kinds, core.InteractionKind(k))
					}
				}
				filters = append(filters, f)

			case "rule":
				expr := conv.ConfigGet(filterMap, "expr", "")
				if expr == "" {
					return nil, fmt.Errorf("rule filter requires expr")
				}
				filters = append(filters, filter.NewRuleFilter(expr))

			default:
				return nil, fmt.Errorf("unknown filter type: %s", filterType)
			}
		}

		return &filter.FilterNode{Filters: filters}, nil
	}
}

func buildDiversityNoveltyNode(d Deps) NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rerank.DiversityNovelty{
			Embeddings: d.Embeddings,
			Novelty: &rerank.NoveltyScorer{
				Activity:  d.Activity,
				DecayDays: int(conv.ConfigGetInt64(cfg, "decay_days", 0)),
				Logger:    d.Logger,
			},
			DefaultLambda:          conv.ConfigGetFloat64(cfg, "mmr_lambda", 0.5),
			DefaultDiversityWeight: conv.ConfigGetFloat64(cfg, "diversity_weight", 0.2),
			DefaultNoveltyWeight:   conv.ConfigGetFloat64(cfg, "novelty_weight", 0.2),
			DefaultTopN:            int(conv.ConfigGetInt64(cfg, "top_n", 10)),
			Logger:                 d.Logger,
		}, nil
	}
}

func buildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}
