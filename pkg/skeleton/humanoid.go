package skeleton

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/types"
)

// Humanoid 内存中的人形骨骼，实现 Skeleton 接口
//
// 供测试、查看器和无界面校验工具使用；真实宿主通常会用自己的骨骼实现替换它。
type Humanoid struct {
	root       types.Pose
	hipsParent mgl64.Mat4
	bones      map[BoneRole]types.Pose
	hipsLocal  mgl64.Vec3
}

// NewHumanoid 创建人形骨骼
//
// 参数:
//   - root: 根节点位姿
//   - hipsParent: 髋部父节点的局部→世界矩阵
//   - bones: 各骨骼的世界位姿
func NewHumanoid(root types.Pose, hipsParent mgl64.Mat4, bones map[BoneRole]types.Pose) *Humanoid {
	h := &Humanoid{
		root:       root,
		hipsParent: hipsParent,
		bones:      make(map[BoneRole]types.Pose, len(bones)),
	}
	for role, pose := range bones {
		h.bones[role] = pose
	}
	if hips, ok := h.bones[BoneHips]; ok {
		h.hipsLocal = mgl64.TransformCoordinate(hips.Position, hipsParent.Inv())
	}
	return h
}

// IsHumanoid 所有必需骨骼都存在时为 true
func (h *Humanoid) IsHumanoid() bool {
	for _, role := range RequiredBones {
		if _, ok := h.bones[role]; !ok {
			return false
		}
	}
	return true
}

// Bone 按角色查询骨骼位姿
func (h *Humanoid) Bone(role BoneRole) (types.Pose, bool) {
	pose, ok := h.bones[role]
	return pose, ok
}

// Root 根节点位姿
func (h *Humanoid) Root() types.Pose {
	return h.root
}

// HipsParent 髋部父节点矩阵
func (h *Humanoid) HipsParent() mgl64.Mat4 {
	return h.hipsParent
}

// SetBonePose 写回骨骼世界位姿
func (h *Humanoid) SetBonePose(role BoneRole, pose types.Pose) {
	h.bones[role] = pose
	if role == BoneHips {
		h.hipsLocal = mgl64.TransformCoordinate(pose.Position, h.hipsParent.Inv())
	}
}

// SetHipsLocalPosition 写回髋部局部位置，同时更新髋部世界位置
func (h *Humanoid) SetHipsLocalPosition(local mgl64.Vec3) {
	h.hipsLocal = local
	hips := h.bones[BoneHips]
	hips.Position = mgl64.TransformCoordinate(local, h.hipsParent)
	h.bones[BoneHips] = hips
}

// HipsLocalPosition 髋部在父空间中的局部位置
func (h *Humanoid) HipsLocalPosition() mgl64.Vec3 {
	return h.hipsLocal
}

// RemoveBone 删除骨骼（模拟缺少肩部等情况）
func (h *Humanoid) RemoveBone(role BoneRole) {
	delete(h.bones, role)
}

// Translate 整体平移角色（根节点、髋部父节点和全部骨骼）
// 模拟动画层驱动的根运动
func (h *Humanoid) Translate(delta mgl64.Vec3) {
	h.root.Position = h.root.Position.Add(delta)
	h.hipsParent = mgl64.Translate3D(delta.X(), delta.Y(), delta.Z()).Mul4(h.hipsParent)
	for role, pose := range h.bones {
		pose.Position = pose.Position.Add(delta)
		h.bones[role] = pose
	}
}

// 默认人形比例（米），约 1.7m 身高
const (
	defaultHipsHeight     = 0.95
	defaultHeadHeight     = 1.6
	defaultHandHeight     = 1.4
	defaultHandSpan       = 0.75
	defaultShoulderHeight = 1.45
	defaultShoulderSpan   = 0.18
	defaultUpperLegSpan   = 0.1
	defaultUpperLegHeight = 0.9
	defaultFootSpan       = 0.1
	defaultFootHeight     = 0.08
)

// NewDefaultHumanoid 创建 T 字姿势的标准人形骨骼
//
// 骨骼位置相对于根节点给出并经根节点位姿变换到世界空间；
// 髋部父节点与根节点重合。
//
// 参数:
//   - root: 根节点位姿（地面上的角色原点）
//   - withShoulders: 是否包含左右肩骨骼
func NewDefaultHumanoid(root types.Pose, withShoulders bool) *Humanoid {
	local := map[BoneRole]mgl64.Vec3{
		BoneHips:          {0, defaultHipsHeight, 0},
		BoneHead:          {0, defaultHeadHeight, 0},
		BoneLeftHand:      {-defaultHandSpan, defaultHandHeight, 0},
		BoneRightHand:     {defaultHandSpan, defaultHandHeight, 0},
		BoneLeftUpperLeg:  {-defaultUpperLegSpan, defaultUpperLegHeight, 0},
		BoneRightUpperLeg: {defaultUpperLegSpan, defaultUpperLegHeight, 0},
		BoneLeftFoot:      {-defaultFootSpan, defaultFootHeight, 0},
		BoneRightFoot:     {defaultFootSpan, defaultFootHeight, 0},
	}
	if withShoulders {
		local[BoneLeftShoulder] = mgl64.Vec3{-defaultShoulderSpan, defaultShoulderHeight, 0}
		local[BoneRightShoulder] = mgl64.Vec3{defaultShoulderSpan, defaultShoulderHeight, 0}
	}

	bones := make(map[BoneRole]types.Pose, len(local))
	for role, p := range local {
		bones[role] = types.NewPose(root.TransformPoint(p), root.Rotation)
	}
	return NewHumanoid(root, root.Mat4(), bones)
}
