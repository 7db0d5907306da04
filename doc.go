// Package jobrec 是一个职位推荐引擎（Job Recommendation Engine）。
//
// 设计要点：
// - 双路召回: 内容召回（画像向量余弦相似度）+ Item-CF 协同过滤
// - 三种融合策略: weighted（归一化加权）/ cascade（内容优先级联）/ mixed（交替混合）
// - 重排可选: MMR 多样性 + 新颖性（行为时间衰减 + 职位新鲜度）加权融合
// - Pipeline 可编排: 各阶段以 Node 串联（Recall → Filter → Fusion → ReRank），
//   支持 YAML 配置装配；engine.Recommender 是开箱即用的门面
package jobrec

import "github.com/rushteam/jobrec/pipeline"

// 轻量 facade：便于用户直接 import "jobrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindFusion      = pipeline.KindFusion
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
