// Package types 定义共享的基础类型
package types

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// 世界坐标约定：Y 轴向上，+Z 为前方，+X 为右方
var (
	AxisRight   = mgl64.Vec3{1, 0, 0}
	AxisUp      = mgl64.Vec3{0, 1, 0}
	AxisForward = mgl64.Vec3{0, 0, 1}
)

// Pose 世界空间位姿（位置 + 旋转）
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewPose 创建位姿，旋转为零值时使用单位四元数
func NewPose(position mgl64.Vec3, rotation mgl64.Quat) Pose {
	if rotation == (mgl64.Quat{}) {
		rotation = mgl64.QuatIdent()
	}
	return Pose{Position: position, Rotation: rotation}
}

// IdentityPose 返回原点处、无旋转的位姿
func IdentityPose() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// rotation 返回可用的旋转（零值四元数视为单位旋转）
func (p Pose) rotation() mgl64.Quat {
	if p.Rotation == (mgl64.Quat{}) {
		return mgl64.QuatIdent()
	}
	return p.Rotation
}

// TransformPoint 将局部空间的点变换到世界空间
func (p Pose) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	return p.Position.Add(p.rotation().Rotate(local))
}

// InverseTransformPoint 将世界空间的点变换到该位姿的局部空间
func (p Pose) InverseTransformPoint(world mgl64.Vec3) mgl64.Vec3 {
	return p.rotation().Inverse().Rotate(world.Sub(p.Position))
}

// TransformPose 将局部空间的位姿变换到世界空间
func (p Pose) TransformPose(local Pose) Pose {
	return Pose{
		Position: p.TransformPoint(local.Position),
		Rotation: p.rotation().Mul(local.rotation()).Normalize(),
	}
}

// InverseTransformPose 将世界空间的位姿变换到该位姿的局部空间
func (p Pose) InverseTransformPose(world Pose) Pose {
	return Pose{
		Position: p.InverseTransformPoint(world.Position),
		Rotation: p.rotation().Inverse().Mul(world.rotation()).Normalize(),
	}
}

// Right 返回位姿的右方向（世界空间）
func (p Pose) Right() mgl64.Vec3 {
	return p.rotation().Rotate(AxisRight)
}

// Up 返回位姿的上方向（世界空间）
func (p Pose) Up() mgl64.Vec3 {
	return p.rotation().Rotate(AxisUp)
}

// Forward 返回位姿的前方向（世界空间）
func (p Pose) Forward() mgl64.Vec3 {
	return p.rotation().Rotate(AxisForward)
}

// Mat4 返回局部到世界的仿射矩阵
func (p Pose) Mat4() mgl64.Mat4 {
	t := mgl64.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z())
	return t.Mul4(p.rotation().Mat4())
}

func (p Pose) String() string {
	return fmt.Sprintf("Pose{x=%+07.3f y=%+07.3f z=%+07.3f}", p.Position.X(), p.Position.Y(), p.Position.Z())
}
