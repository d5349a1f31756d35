package systems

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/skeleton"
	"github.com/gonewx/legwork/pkg/types"
)

// HeadHipSystem 头部钉住 + 髋部跟随
//
// 每帧把头部骨骼直接设为头部目标（不做平滑），
// 再根据构建时记录的 head - hips 静止偏移重新计算髋部在父空间中的局部位置，
// 使髋部始终“挂”在头部目标下方。
//
// 必须在步态/落脚系统之前运行。
type HeadHipSystem struct {
	skeleton skeleton.Skeleton
}

// NewHeadHipSystem 创建头髋跟随系统
func NewHeadHipSystem(skel skeleton.Skeleton) *HeadHipSystem {
	return &HeadHipSystem{skeleton: skel}
}

// HipsLocalFor 计算给定头部目标对应的髋部局部位置
//
// 公式：hipsLocal = Inv(parent)·headPosition - InvVector(parent)·restOffset
//
// 参数:
//   - hipsParent: 髋部父节点的世界矩阵
//   - headTarget: 头部目标（世界空间）
//   - restOffset: 构建时 head - hips 的世界空间偏移
func HipsLocalFor(hipsParent mgl64.Mat4, headTarget types.Pose, restOffset mgl64.Vec3) mgl64.Vec3 {
	inv := hipsParent.Inv()
	headLocal := mgl64.TransformCoordinate(headTarget.Position, inv)
	offsetLocal := mgl64.TransformNormal(restOffset, inv)
	return headLocal.Sub(offsetLocal)
}

// Update 写入头部位姿和髋部局部位置
func (s *HeadHipSystem) Update(headTarget types.Pose, restOffset mgl64.Vec3) {
	s.skeleton.SetBonePose(skeleton.BoneHead, headTarget)
	s.skeleton.SetHipsLocalPosition(HipsLocalFor(s.skeleton.HipsParent(), headTarget, restOffset))
}
