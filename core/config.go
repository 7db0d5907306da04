package core

// EngineConfig 是引擎入口相关的配置接口，用于提供默认值与边界。
type EngineConfig interface {
	// DefaultTopN 返回默认的推荐条数
	DefaultTopN() int

	// MaxTopN 返回 top_n 的上限（约束 MMR 的 O(top_n^2) 内层循环）
	MaxTopN() int

	// DefaultContentWeight 返回 weighted 策略的默认 content 权重
	DefaultContentWeight() float64

	// DefaultCFWeight 返回 weighted 策略的默认协同过滤权重
	DefaultCFWeight() float64

	// NoveltyDecayDays 返回新颖性衰减窗口（天）
	NoveltyDecayDays() int
}

// DefaultEngineConfig 是默认的引擎配置实现。
type DefaultEngineConfig struct{}

func (c *DefaultEngineConfig) DefaultTopN() int {
	return 10
}

func (c *DefaultEngineConfig) MaxTopN() int {
	return 50
}

func (c *DefaultEngineConfig) DefaultContentWeight() float64 {
	return 0.6
}

func (c *DefaultEngineConfig) DefaultCFWeight() float64 {
	return 0.4
}

func (c *DefaultEngineConfig) NoveltyDecayDays() int {
	return 30
}
