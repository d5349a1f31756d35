package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/gonewx/legwork/pkg/skeleton"
	"github.com/gonewx/legwork/pkg/types"
)

// EndpointComponent 一个末端执行器：目标位姿 + 极向量点（pole）
//
// 激活期间恰好存在五个：左手、右手、左脚、右脚、头部。
// 头部末端没有 pole，也不绑定到 IK 求解器。
type EndpointComponent struct {
	Limb types.Limb

	// Target 目标位姿（世界空间）
	Target types.Pose

	// HasPole 是否带有 pole（头部为 false）
	HasPole bool
	// PoleParent pole 的父骨骼
	// 左右手挂在 Head 上，左右脚挂在 Hips 上
	PoleParent skeleton.BoneRole
	// PoleLocal pole 在父骨骼局部空间中的位置（创建时计算一次）
	PoleLocal mgl64.Vec3
	// Pole 当前帧 pole 的世界坐标（由父骨骼位姿推导）
	Pole mgl64.Vec3

	// ChainLength IK 链长度（骨骼数）
	ChainLength int

	// Generation 所属末端集合的代号，每次激活生成新值
	Generation uuid.UUID

	// Bound 是否已向求解器注册
	Bound bool
}
