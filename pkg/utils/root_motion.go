package utils

import "github.com/go-gl/mathgl/mgl64"

// RootMotionDelta 计算根运动位移增量，并检测瞬移
//
// 宿主直接把角色放到远处（传送、重生、关卡切换）时，帧间位移会远大于正常步行，
// 如果照常使用会让步态速度和落点前置量瞬间失控。
// 水平位移超过 maxDelta 时视为瞬移：返回零位移和 teleported=true。
// 垂直位移不参与判定。
//
// 参数:
//   - prev: 上一帧位置
//   - cur: 当前帧位置
//   - maxDelta: 瞬移检测阈值（米），<= 0 时不检测
//
// 返回:
//   - delta: 位移增量（瞬移时为零）
//   - teleported: 是否发生瞬移
func RootMotionDelta(prev, cur mgl64.Vec3, maxDelta float64) (mgl64.Vec3, bool) {
	delta := cur.Sub(prev)
	if maxDelta > 0 && Horizontal(delta).LenSqr() > maxDelta*maxDelta {
		return mgl64.Vec3{}, true
	}
	return delta, false
}
