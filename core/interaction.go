package core

import "time"

// InteractionKind 是求职者行为事件的类型，封闭集合，每种行为映射到固定的隐式评分。
type InteractionKind string

const (
	InteractionView  InteractionKind = "view"
	InteractionClick InteractionKind = "click"
	InteractionSave  InteractionKind = "save"
	InteractionLike  InteractionKind = "like"
	InteractionApply InteractionKind = "apply"
)

// Weight 返回行为对应的隐式评分（view=1, click=2, save=3, like=4, apply=5）。
// 未知类型返回 0，构建矩阵时会被忽略。
func (k InteractionKind) Weight() float64 {
	switch k {
	case InteractionView:
		return 1
	case InteractionClick:
		return 2
	case InteractionSave:
		return 3
	case InteractionLike:
		return 4
	case InteractionApply:
		return 5
	default:
		return 0
	}
}

// Interaction 是一条求职者-职位行为事件，由上游行为采集产出，引擎只读。
// Rating 为 0 时以 Kind.Weight() 为准；同一 (CandidateID, JobID) 的多条事件
// 在构建交互矩阵前会被累加为一个聚合评分。
type Interaction struct {
	CandidateID string
	JobID       string
	Kind        InteractionKind
	Rating      float64
	OccurredAt  time.Time
}

// EffectiveRating 返回事件的有效评分。
func (it Interaction) EffectiveRating() float64 {
	if it.Rating != 0 {
		return it.Rating
	}
	return it.Kind.Weight()
}
