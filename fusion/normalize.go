package fusion

// MinMax 对一组分数做 min-max 归一化，映射到 [0, 1]。
//
// 退化规则：当所有分数相等（含单元素）时，max-min 为 0，
// 此时全部返回 0，不做除零处理之外的特殊补偿。
// 空切片返回空切片。
func MinMax(scores []float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}
	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	if max == min {
		return out
	}
	span := max - min
	for i, s := range scores {
		out[i] = (s - min) / span
	}
	return out
}
