package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Snap 将数值吸附到 interval 的整数倍
// 公式：round(v / interval) * interval
// interval <= 0 时原样返回（不做吸附）
//
// 对已吸附的值再次吸附结果不变（幂等）
func Snap(v, interval float64) float64 {
	if interval <= 0 {
		return v
	}
	return math.Round(v/interval) * interval
}

// SnapGround 对地面平面坐标的两个轴分别吸附
func SnapGround(p mgl64.Vec2, interval float64) mgl64.Vec2 {
	return mgl64.Vec2{Snap(p.X(), interval), Snap(p.Y(), interval)}
}
