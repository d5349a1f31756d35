package utils

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Keyframe 曲线关键帧
type Keyframe struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// Curve 一维关键帧曲线（抬脚高度曲线）
//
// 三个及以上关键帧使用 Fritsch-Butland 单调三次插值（无过冲），
// 两个关键帧退化为分段线性插值。
// 求值时 t 会被截断到首尾关键帧的时间范围内。
type Curve struct {
	keys      []Keyframe
	predictor interp.Predictor
}

// NewCurve 根据关键帧创建曲线
//
// 参数:
//   - keys: 关键帧列表（无需预先排序）
//
// 返回:
//   - *Curve: 曲线实例
//   - error: 关键帧少于 2 个或时间重复时返回错误
func NewCurve(keys []Keyframe) (*Curve, error) {
	if len(keys) < 2 {
		return nil, fmt.Errorf("curve needs at least 2 keyframes, got %d", len(keys))
	}

	sorted := make([]Keyframe, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, k := range sorted {
		if i > 0 && k.Time <= sorted[i-1].Time {
			return nil, fmt.Errorf("curve keyframe times must be distinct, duplicate at t=%.3f", k.Time)
		}
		xs[i] = k.Time
		ys[i] = k.Value
	}

	c := &Curve{keys: sorted}
	if len(sorted) >= 3 {
		var fb interp.FritschButland
		if err := fb.Fit(xs, ys); err == nil {
			c.predictor = &fb
			return c, nil
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("failed to fit curve: %w", err)
	}
	c.predictor = &pl
	return c, nil
}

// MustCurve 同 NewCurve，出错时 panic（仅用于常量关键帧）
func MustCurve(keys []Keyframe) *Curve {
	c, err := NewCurve(keys)
	if err != nil {
		panic(err)
	}
	return c
}

// Evaluate 计算曲线在 t 处的值
func (c *Curve) Evaluate(t float64) float64 {
	if c == nil || c.predictor == nil {
		return 0
	}
	first := c.keys[0]
	last := c.keys[len(c.keys)-1]
	if t <= first.Time {
		return first.Value
	}
	if t >= last.Time {
		return last.Value
	}
	return c.predictor.Predict(t)
}

// Keys 返回关键帧副本（已按时间排序）
func (c *Curve) Keys() []Keyframe {
	out := make([]Keyframe, len(c.keys))
	copy(out, c.keys)
	return out
}

// DefaultLiftKeys 默认抬脚曲线：起点和终点贴地，中点抬到最高
var DefaultLiftKeys = []Keyframe{
	{Time: 0, Value: 0},
	{Time: 0.5, Value: 1},
	{Time: 1, Value: 0},
}
