// Package fusion 把 content 与协同过滤两路候选合并为一个排序列表。
// 支持 weighted / cascade / mixed 三种融合策略。
package fusion

import "github.com/rushteam/jobrec/core"

// Strategy 是融合策略：纯粹决定"两个候选列表如何合并"。
type Strategy string

const (
	// StrategyWeighted 两路各自 min-max 归一化后按权重加权合并
	StrategyWeighted Strategy = "weighted"
	// StrategyCascade content 路优先，不足时用协同过滤路补齐
	StrategyCascade Strategy = "cascade"
	// StrategyMixed 两路交替取一条
	StrategyMixed Strategy = "mixed"
)

// Strategies 返回全部可用策略名，用于 stats 与参数校验。
func Strategies() []string {
	return []string{string(StrategyWeighted), string(StrategyCascade), string(StrategyMixed)}
}

// ParseStrategy 校验并解析策略名；未知策略返回 INVALID_ARGUMENT。
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyWeighted, StrategyCascade, StrategyMixed:
		return Strategy(s), nil
	default:
		return "", core.NewDomainError(core.ModuleFusion, core.ErrorCodeInvalidArgument,
			"fusion: unknown strategy: "+s)
	}
}

// Weights 是 weighted 策略的两路权重。
// 引擎不做归一化，权重是否合理由调用方负责（不强制和为 1）。
type Weights struct {
	Content float64
	CF      float64
}

// 策略路径标签：记录每条候选由哪条融合路径产出
const (
	TagWeighted             = "weighted"
	TagCascadeContent       = "cascade-content"
	TagCascadeCollaborative = "cascade-collaborative"
	TagMixedContent         = "mixed-content"
	TagMixedCollaborative   = "mixed-collaborative"
)
