// Package solver 定义 IK 骨骼链求解器（外部协作者）的接口
//
// 本模块只生成末端目标和 pole 位置，链的求解由实现 Solver 接口的外部求解器完成。
package solver

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/ecs"
	"github.com/gonewx/legwork/pkg/types"
)

// Binding 末端绑定参数
type Binding struct {
	Limb             types.Limb
	Target           types.Pose
	Pole             mgl64.Vec3
	ChainLength      int
	SnapBackStrength float64
}

// Solver IK 求解器
type Solver interface {
	// Bind 注册末端
	Bind(id ecs.EntityID, b Binding) error
	// Unbind 注销末端，未注册时为空操作
	Unbind(id ecs.EntityID)
	// IsOutOfReach 目标是否超出链的最大伸展长度
	IsOutOfReach(id ecs.EntityID) bool
	// SetEnabled 启用/禁用末端的求解
	SetEnabled(id ecs.EntityID, enabled bool)
	// SetTarget 每帧推送最新的目标位姿和 pole 位置
	SetTarget(id ecs.EntityID, target types.Pose, pole mgl64.Vec3)
}
