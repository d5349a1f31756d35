// Package skeleton 定义骨骼适配层（外部协作者）的接口
//
// 核心逻辑只通过 Skeleton 接口读取骨骼位姿、写回头部位姿和髋部局部位置，
// 不关心骨骼来自哪个引擎或文件格式。
package skeleton

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/types"
)

// BoneRole 人形骨骼角色
type BoneRole int

const (
	BoneHips BoneRole = iota
	BoneHead
	BoneLeftHand
	BoneRightHand
	BoneLeftFoot
	BoneRightFoot
	BoneLeftUpperLeg
	BoneRightUpperLeg
	BoneLeftShoulder
	BoneRightShoulder
)

// RequiredBones 构建末端集合必须存在的骨骼
// 肩部骨骼是可选的，只影响手臂 IK 链长度
var RequiredBones = []BoneRole{
	BoneHips, BoneHead,
	BoneLeftHand, BoneRightHand,
	BoneLeftFoot, BoneRightFoot,
	BoneLeftUpperLeg, BoneRightUpperLeg,
}

// AllBones 全部骨骼角色
var AllBones = append(append([]BoneRole{}, RequiredBones...), BoneLeftShoulder, BoneRightShoulder)

// HumanoidName 返回角色的人形骨骼名（与 VRM humanoid 命名一致）
func (r BoneRole) HumanoidName() string {
	switch r {
	case BoneHips:
		return "hips"
	case BoneHead:
		return "head"
	case BoneLeftHand:
		return "leftHand"
	case BoneRightHand:
		return "rightHand"
	case BoneLeftFoot:
		return "leftFoot"
	case BoneRightFoot:
		return "rightFoot"
	case BoneLeftUpperLeg:
		return "leftUpperLeg"
	case BoneRightUpperLeg:
		return "rightUpperLeg"
	case BoneLeftShoulder:
		return "leftShoulder"
	case BoneRightShoulder:
		return "rightShoulder"
	}
	return "unknown"
}

func (r BoneRole) String() string {
	return r.HumanoidName()
}

// Skeleton 骨骼适配器
//
// Bone 返回世界空间位姿；HipsParent 返回髋部父节点的局部→世界矩阵，
// 用于在父空间中计算髋部局部位置。
type Skeleton interface {
	// IsHumanoid 是否为有效的人形骨骼
	IsHumanoid() bool
	// Bone 按角色查询骨骼位姿，骨骼不存在时 ok 为 false
	Bone(role BoneRole) (pose types.Pose, ok bool)
	// Root 角色根节点位姿（提供左右/前方/上方坐标轴和地面高度）
	Root() types.Pose
	// HipsParent 髋部父节点的局部→世界矩阵
	HipsParent() mgl64.Mat4

	// SetBonePose 写回骨骼世界位姿（头部跟随目标时使用）
	SetBonePose(role BoneRole, pose types.Pose)
	// SetHipsLocalPosition 写回髋部在父空间中的局部位置
	SetHipsLocalPosition(local mgl64.Vec3)
}
