package vectormath

import (
	"math"
	"testing"

	"github.com/rushteam/jobrec/core"
)

const tolerance = 1e-9

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"zero vector a", []float64{0, 0}, []float64{1, 2}, 0.0},
		{"zero vector b", []float64{1, 2}, []float64{0, 0}, 0.0},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 0.0},
		{"scaled", []float64{2, 0}, []float64{5, 0}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Cosine() error = %v", err)
			}
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

// 对称律：cosine(a,b) == cosine(b,a)；自反律：cosine(a,a) == 1（a 非零）
func TestCosineLaws(t *testing.T) {
	pairs := [][2][]float64{
		{{0.3, -1.2, 4.5}, {2.1, 0.4, -0.9}},
		{{1, 2}, {3, 4}},
		{{-5, 0, 0.001}, {0.5, 0.5, 0.5}},
	}

	for _, p := range pairs {
		ab, err := Cosine(p[0], p[1])
		if err != nil {
			t.Fatalf("Cosine(a,b) error = %v", err)
		}
		ba, err := Cosine(p[1], p[0])
		if err != nil {
			t.Fatalf("Cosine(b,a) error = %v", err)
		}
		if math.Abs(ab-ba) > tolerance {
			t.Errorf("symmetry broken: %v vs %v", ab, ba)
		}

		aa, err := Cosine(p[0], p[0])
		if err != nil {
			t.Fatalf("Cosine(a,a) error = %v", err)
		}
		if math.Abs(aa-1.0) > tolerance {
			t.Errorf("Cosine(a,a) = %v, want 1.0", aa)
		}
	}
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine([]float64{1, 2}, []float64{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for mismatched dimensions")
	}
	if !core.IsDimensionMismatch(err) {
		t.Errorf("expected DIMENSION_MISMATCH, got %v", err)
	}
}

func TestCosineMatrix(t *testing.T) {
	query := []float64{1, 0}
	corpus := [][]float64{{1, 0}, {0, 1}, {-1, 0}}

	got, err := CosineMatrix(query, corpus)
	if err != nil {
		t.Fatalf("CosineMatrix() error = %v", err)
	}
	want := []float64{1, 0, -1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > tolerance {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}

	// 任意一行维度不一致时整体失败
	_, err = CosineMatrix(query, [][]float64{{1, 0}, {1, 2, 3}})
	if !core.IsDimensionMismatch(err) {
		t.Errorf("expected DIMENSION_MISMATCH, got %v", err)
	}
}

func TestCosineSparse(t *testing.T) {
	// 稀疏形式与稠密形式结果一致
	a := map[int]float64{0: 1, 2: 2}
	b := map[int]float64{0: 1, 1: 3}
	dense, _ := Cosine([]float64{1, 0, 2}, []float64{1, 3, 0})
	sparse := CosineSparse(a, b)
	if math.Abs(dense-sparse) > tolerance {
		t.Errorf("CosineSparse = %v, dense = %v", sparse, dense)
	}

	if got := CosineSparse(map[int]float64{}, b); got != 0 {
		t.Errorf("empty sparse vector should give 0, got %v", got)
	}
}

func TestPairwiseAverage(t *testing.T) {
	avg, min, max, err := PairwiseAverage([][]float64{{1, 0}, {0, 1}, {1, 0}})
	if err != nil {
		t.Fatalf("PairwiseAverage() error = %v", err)
	}
	// 两两相似度: (v0,v1)=0, (v0,v2)=1, (v1,v2)=0 → avg=1/3
	if math.Abs(avg-1.0/3.0) > tolerance {
		t.Errorf("avg = %v, want 1/3", avg)
	}
	if min != 0 || max != 1 {
		t.Errorf("min/max = %v/%v, want 0/1", min, max)
	}

	avg, _, _, _ = PairwiseAverage([][]float64{{1, 0}})
	if avg != 0 {
		t.Errorf("single vector avg = %v, want 0", avg)
	}
}
