package utils

import (
	"math"
	"testing"
)

// TestLerp 测试线性插值
func TestLerp(t *testing.T) {
	tests := []struct {
		name     string
		a, b, t  float64
		expected float64
	}{
		{"起点", 2, 4, 0, 2},
		{"终点", 2, 4, 1, 4},
		{"中点", 2, 4, 0.5, 3},
		{"外插", 0, 1, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lerp(tt.a, tt.b, tt.t); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Lerp(%v, %v, %v) = %v, 期望 %v", tt.a, tt.b, tt.t, got, tt.expected)
			}
		})
	}
}

// TestRemapEndpoints 源区间端点映射到目标区间端点
func TestRemapEndpoints(t *testing.T) {
	ranges := [][2]float64{{0, 1}, {-1, 1}, {2, -3}, {0.1, 0.25}, {-10, 40}}
	targets := [][2]float64{{0, 1}, {0.1, 0.3}, {5, -5}, {-0.35, 0.35}}

	for _, r := range ranges {
		for _, tr := range targets {
			if got := Remap(r[0], r[0], r[1], tr[0], tr[1]); math.Abs(got-tr[0]) > 1e-9 {
				t.Errorf("Remap(min1) = %v, 期望 %v (range %v -> %v)", got, tr[0], r, tr)
			}
			if got := Remap(r[1], r[0], r[1], tr[0], tr[1]); math.Abs(got-tr[1]) > 1e-9 {
				t.Errorf("Remap(max1) = %v, 期望 %v (range %v -> %v)", got, tr[1], r, tr)
			}
		}
	}
}

// TestRemapDegenerateRange 源区间退化时返回 min2 而不是 NaN
func TestRemapDegenerateRange(t *testing.T) {
	got := Remap(0.7, 1, 1, 0.1, 0.3)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("Remap 退化区间返回了 %v", got)
	}
	if got != 0.1 {
		t.Errorf("Remap 退化区间 = %v, 期望 0.1", got)
	}
}
