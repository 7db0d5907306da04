// Package vectormath 提供嵌入向量的数学原语：余弦相似度及其批量形式。
// 所有函数都是纯函数，无副作用、无 I/O，被召回与重排模块共用。
package vectormath

import (
	"fmt"
	"math"

	"github.com/rushteam/jobrec/core"
)

// Cosine 计算两个向量的余弦相似度，结果落在 [-1, 1]。
// 维度不一致时返回 DIMENSION_MISMATCH 领域错误；
// 任意一方为零向量时返回 0 而不是除零。
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, core.NewDomainError(
			core.ModuleKernel,
			core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("vectormath: dimension mismatch %d vs %d", len(a), len(b)),
		)
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// CosineMatrix 计算 query 与语料中每个向量的余弦相似度，逐行返回。
// 任意一行维度不一致时整体返回 DIMENSION_MISMATCH；
// 需要按条容错时应逐条调用 Cosine。
func CosineMatrix(query []float64, corpus [][]float64) ([]float64, error) {
	out := make([]float64, len(corpus))
	for i, row := range corpus {
		sim, err := Cosine(query, row)
		if err != nil {
			return nil, err
		}
		out[i] = sim
	}
	return out, nil
}

// CosineSparse 计算两个稀疏向量（index -> value）的余弦相似度。
// 协同过滤的物品列向量天然稀疏，用 map 形式避免物化整列。
func CosineSparse(a, b map[int]float64) float64 {
	var dot, normA, normB float64
	for i, va := range a {
		normA += va * va
		if vb, ok := b[i]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// PairwiseAverage 返回语料内两两余弦相似度的平均/最小/最大值，
// 用于推荐结果的多样性分析。少于两个向量时平均相似度为 0。
func PairwiseAverage(vectors [][]float64) (avg, min, max float64, err error) {
	if len(vectors) < 2 {
		return 0, 0, 0, nil
	}

	min = math.Inf(1)
	max = math.Inf(-1)
	var sum float64
	var count int

	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			sim, cerr := Cosine(vectors[i], vectors[j])
			if cerr != nil {
				return 0, 0, 0, cerr
			}
			sum += sim
			count++
			if sim < min {
				min = sim
			}
			if sim > max {
				max = sim
			}
		}
	}

	return sum / float64(count), min, max, nil
}
