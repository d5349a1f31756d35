// Package rig 提供宿主使用的 IK 末端合成控制器
//
// 宿主在每帧姿态计算之后、IK 求解之前调用 Controller.Update：
//
//	ctrl := rig.NewController(skel, solver, cfg)
//	if ctrl.Activate() {
//	    for frame := range frames {
//	        ctrl.Update(rig.FrameInput{Dt: frame.Dt})
//	    }
//	}
//	ctrl.Deactivate()
//
// 每帧的执行顺序固定为：求解器开关 → 头髋跟随 → 步态 → pole 更新 → 目标推送。
package rig

import (
	"fmt"
	"log"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/components"
	"github.com/gonewx/legwork/pkg/config"
	"github.com/gonewx/legwork/pkg/ecs"
	"github.com/gonewx/legwork/pkg/skeleton"
	"github.com/gonewx/legwork/pkg/solver"
	"github.com/gonewx/legwork/pkg/systems"
	"github.com/gonewx/legwork/pkg/types"
	"github.com/gonewx/legwork/pkg/utils"
)

// FrameInput 一帧的宿主输入
type FrameInput struct {
	// Dt 帧时间（秒）
	Dt float64
	// RootVelocity 宿主提供的根节点速度，为 nil 时由髋部位移推导
	RootVelocity *mgl64.Vec3
}

// Controller 单个角色的末端合成控制器
//
// 头部和手部目标跟随角色根节点（保存为根节点局部位姿），
// 脚部目标由步态模型逐帧生成。
type Controller struct {
	skeleton skeleton.Skeleton
	solver   solver.Solver
	config   *config.RigConfig

	entityManager *ecs.EntityManager
	builder       *systems.RigBuilderSystem
	follower      *systems.HeadHipSystem
	strategy      systems.GaitStrategy

	// 根节点局部空间中的目标
	headLocal types.Pose
	handLocal map[types.Limb]types.Pose

	prevHips mgl64.Vec3
	active   bool
}

// NewController 创建控制器
//
// 参数:
//   - skel: 骨骼适配器
//   - s: IK 求解器
//   - cfg: 配置，为 nil 时使用默认配置（内部保存副本）
func NewController(skel skeleton.Skeleton, s solver.Solver, cfg *config.RigConfig) *Controller {
	if cfg == nil {
		cfg = config.Default()
	}
	em := ecs.NewEntityManager()
	return &Controller{
		skeleton:      skel,
		solver:        s,
		config:        cfg.Clone(),
		entityManager: em,
		builder:       systems.NewRigBuilderSystem(em, s),
		follower:      systems.NewHeadHipSystem(skel),
		handLocal:     make(map[types.Limb]types.Pose, 2),
	}
}

// Activate 构建末端集合并开始逐帧更新
//
// 总是先销毁旧的集合，所有步态状态重置为初始值。
// 骨骼不是有效人形时返回 false，控制器保持未激活，可稍后重试。
func (c *Controller) Activate() bool {
	set, ok := c.builder.Build(c.skeleton, c.config)
	if !ok {
		c.active = false
		c.strategy = nil
		log.Printf("[Controller] Activation skipped: skeleton is not ready")
		return false
	}

	root := c.skeleton.Root()
	for limb, id := range set.IDs {
		ep, _ := ecs.GetComponent[*components.EndpointComponent](c.entityManager, id)
		switch {
		case limb == types.LimbHead:
			c.headLocal = root.InverseTransformPose(ep.Target)
		case limb.IsHand():
			c.handLocal[limb] = root.InverseTransformPose(ep.Target)
		}
	}

	hips, _ := c.skeleton.Bone(skeleton.BoneHips)
	c.prevHips = hips.Position
	c.strategy = systems.NewGaitStrategy(c.entityManager, c.solver, c.config)
	c.active = true

	log.Printf("[Controller] Activated (strategy=%s, endpoints=%d)", c.strategy.Name(), c.builder.EndpointCount())
	return true
}

// Deactivate 销毁末端集合，重复调用安全
func (c *Controller) Deactivate() {
	c.builder.Teardown()
	c.strategy = nil
	if c.active {
		log.Printf("[Controller] Deactivated")
	}
	c.active = false
}

// Active 是否处于激活状态
func (c *Controller) Active() bool {
	return c.active
}

// EndpointCount 当前存在的末端数量
func (c *Controller) EndpointCount() int {
	return c.builder.EndpointCount()
}

// Flags 返回运行时开关
func (c *Controller) Flags() config.FlagConfig {
	return c.config.Flags
}

// SetFlags 修改运行时开关，下一帧生效
func (c *Controller) SetFlags(flags config.FlagConfig) {
	c.config.Flags = flags
}

// Config 返回当前配置的副本
func (c *Controller) Config() *config.RigConfig {
	return c.config.Clone()
}

// SetConfig 替换配置；激活状态下会重新构建末端集合
func (c *Controller) SetConfig(cfg *config.RigConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("failed to apply rig config: %w", err)
	}
	c.config = cfg.Clone()
	if c.active {
		c.Activate()
	}
	return nil
}

// HeadTarget 返回当前头部目标（世界空间）
func (c *Controller) HeadTarget() types.Pose {
	return c.skeleton.Root().TransformPose(c.headLocal)
}

// SetHeadTarget 设置头部目标（世界空间），之后随根节点移动
func (c *Controller) SetHeadTarget(target types.Pose) {
	c.headLocal = c.skeleton.Root().InverseTransformPose(target)
}

// SetHandTarget 设置手部目标（世界空间），之后随根节点移动
func (c *Controller) SetHandTarget(limb types.Limb, target types.Pose) {
	if !limb.IsHand() {
		return
	}
	c.handLocal[limb] = c.skeleton.Root().InverseTransformPose(target)
}

// Update 推进一帧
//
// 未激活时为空操作。
func (c *Controller) Update(in FrameInput) {
	if !c.active {
		return
	}
	set := c.builder.Current()
	if set == nil {
		return
	}
	flags := c.config.Flags
	root := c.skeleton.Root()

	for limb, id := range set.IDs {
		switch {
		case limb.IsHand():
			c.solver.SetEnabled(id, flags.HandIK)
		case limb.IsFoot():
			c.solver.SetEnabled(id, flags.FootIK)
		}
	}

	headTarget := root.TransformPose(c.headLocal)
	if flags.HipIK {
		c.follower.Update(headTarget, set.RestOffset)
	}

	hips, _ := c.skeleton.Bone(skeleton.BoneHips)
	hipsDelta, teleported := utils.RootMotionDelta(c.prevHips, hips.Position, c.config.TeleportDistance)
	c.prevHips = hips.Position

	lead := hipsDelta
	if in.RootVelocity != nil && !teleported {
		lead = in.RootVelocity.Mul(in.Dt)
	}
	if teleported {
		log.Printf("[Controller] Teleport detected, snapping feet to rest")
		systems.SnapFeetToRest(c.entityManager, root, set.FootDistance, c.config.Placement.MinStepDistance)
	}

	if flags.MoveFeet && c.strategy != nil {
		c.strategy.Update(systems.GaitFrame{
			Dt:           in.Dt,
			HipsDelta:    hipsDelta,
			Lead:         lead,
			Root:         root,
			FootDistance: set.FootDistance,
		})
	}

	for limb, id := range set.IDs {
		ep, ok := ecs.GetComponent[*components.EndpointComponent](c.entityManager, id)
		if !ok {
			continue
		}
		switch {
		case limb == types.LimbHead:
			ep.Target = headTarget
		case limb.IsHand():
			ep.Target = root.TransformPose(c.handLocal[limb])
		}
	}

	c.builder.RefreshPoles(c.skeleton)

	for _, id := range c.sortedIDs(set) {
		ep, _ := ecs.GetComponent[*components.EndpointComponent](c.entityManager, id)
		if ep.Bound {
			c.solver.SetTarget(id, ep.Target, ep.Pole)
		}
	}
}

// Targets 返回五个末端的当前目标位姿
func (c *Controller) Targets() map[types.Limb]types.Pose {
	out := make(map[types.Limb]types.Pose, len(types.AllLimbs))
	set := c.builder.Current()
	if set == nil {
		return out
	}
	for limb, id := range set.IDs {
		if ep, ok := ecs.GetComponent[*components.EndpointComponent](c.entityManager, id); ok {
			out[limb] = ep.Target
		}
	}
	return out
}

// FootState 返回脚部反应式落脚状态的副本
func (c *Controller) FootState(limb types.Limb) (components.FootPlacementComponent, bool) {
	id, ok := c.endpointID(limb)
	if !ok {
		return components.FootPlacementComponent{}, false
	}
	fp, ok := ecs.GetComponent[*components.FootPlacementComponent](c.entityManager, id)
	if !ok {
		return components.FootPlacementComponent{}, false
	}
	return *fp, true
}

// GaitState 返回脚部相位振荡器状态的副本
func (c *Controller) GaitState(limb types.Limb) (components.GaitPhaseComponent, bool) {
	id, ok := c.endpointID(limb)
	if !ok {
		return components.GaitPhaseComponent{}, false
	}
	g, ok := ecs.GetComponent[*components.GaitPhaseComponent](c.entityManager, id)
	if !ok {
		return components.GaitPhaseComponent{}, false
	}
	return *g, true
}

// EndpointID 返回肢体对应的末端ID
func (c *Controller) EndpointID(limb types.Limb) (ecs.EntityID, bool) {
	return c.endpointID(limb)
}

func (c *Controller) endpointID(limb types.Limb) (ecs.EntityID, bool) {
	set := c.builder.Current()
	if set == nil {
		return ecs.InvalidEntity, false
	}
	id, ok := set.IDs[limb]
	return id, ok
}

func (c *Controller) sortedIDs(set *systems.EndpointSet) []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(set.IDs))
	for _, id := range set.IDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
