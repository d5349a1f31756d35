// Package utils 提供步态合成中常用的数学工具函数
//
// # 坐标系统概述
//
//   - **世界坐标**：Y 轴向上，+Z 为前方，+X 为右方
//   - **地面坐标**：世界坐标丢弃 Y 轴后的二维坐标 (X, Z)，用于距离比较和网格吸附
//
// 地面坐标与世界坐标的转换：
//
//	ground = (world.X, world.Z)
//	world  = (ground.X, height, ground.Y)
package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ToGround 世界坐标 → 地面坐标（丢弃垂直轴）
func ToGround(world mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{world.X(), world.Z()}
}

// FromGround 地面坐标 → 世界坐标，垂直轴使用给定高度
func FromGround(ground mgl64.Vec2, height float64) mgl64.Vec3 {
	return mgl64.Vec3{ground.X(), height, ground.Y()}
}

// Horizontal 返回向量的水平分量（Y 置零）
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

// GroundDistanceSqr 两点在地面平面上的距离平方
func GroundDistanceSqr(a, b mgl64.Vec3) float64 {
	return ToGround(a).Sub(ToGround(b)).LenSqr()
}

// HeadingRotation 返回把 +Z 前方转到给定水平方向的旋转
// 水平分量为零时返回单位旋转
func HeadingRotation(dir mgl64.Vec3) (mgl64.Quat, bool) {
	h := Horizontal(dir)
	if h.LenSqr() < 1e-12 {
		return mgl64.QuatIdent(), false
	}
	h = h.Normalize()
	// 绕 Y 轴的偏航角
	yaw := math.Atan2(h.X(), h.Z())
	return mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0}), true
}
