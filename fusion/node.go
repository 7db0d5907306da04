package fusion

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/jobrec/core"
	"github.com/rushteam/jobrec/pipeline"
	"github.com/rushteam/jobrec/pkg/conv"
	"github.com/rushteam/jobrec/recall"
)

// Node 是一个 Fusion Node：并发执行 content 与协同过滤两个召回源，
// 再按请求参数中的策略把两路结果融合为一个列表。
//
// 降级规则：协同过滤路失败（数据不足 / 求职者冷启动）时不中断请求，
// 以空列表参与融合，相当于降级为 content-only。content 路失败则整体失败。
type Node struct {
	Content recall.Source
	CF      recall.Source

	// DefaultStrategy 请求未指定 strategy 参数时的默认策略
	DefaultStrategy Strategy
	// DefaultWeights weighted 策略的默认权重
	DefaultWeights Weights
	// DefaultTopN 请求未指定 top_n 时的默认条数
	DefaultTopN int

	Logger *zap.Logger
}

func (n *Node) Name() string        { return "fusion.hybrid" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindFusion }

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	var (
		contentList []*core.Candidate
		cfList      []*core.Candidate
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		list, err := n.Content.Recall(egCtx, rctx)
		if err != nil {
			return err
		}
		contentList = list
		return nil
	})
	if n.CF != nil {
		eg.Go(func() error {
			list, err := n.CF.Recall(egCtx, rctx)
			if err != nil {
				// 协同过滤路降级：记录后以空结果继续
				n.logger().Warn("cf recall degraded",
					zap.String("candidate_id", rctx.CandidateID),
					zap.Error(err))
				return nil
			}
			cfList = list
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	strategy := n.DefaultStrategy
	if strategy == "" {
		strategy = StrategyWeighted
	}
	if s, ok := conv.ToString(rctx.Params["strategy"]); ok && s != "" {
		parsed, err := ParseStrategy(s)
		if err != nil {
			return nil, err
		}
		strategy = parsed
	}

	topN := n.DefaultTopN
	if v, ok := conv.ToInt(rctx.Params["top_n"]); ok {
		topN = v
	}

	weights := n.DefaultWeights
	weights.Content = conv.ConfigGetFloat64(rctx.Params, "content_weight", weights.Content)
	weights.CF = conv.ConfigGetFloat64(rctx.Params, "cf_weight", weights.CF)

	return Fuse(contentList, cfList, strategy, Options{TopN: topN, Weights: &weights})
}

func (n *Node) logger() *zap.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return zap.NewNop()
}
