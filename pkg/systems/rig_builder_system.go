package systems

import (
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/gonewx/legwork/pkg/components"
	"github.com/gonewx/legwork/pkg/config"
	"github.com/gonewx/legwork/pkg/ecs"
	"github.com/gonewx/legwork/pkg/skeleton"
	"github.com/gonewx/legwork/pkg/solver"
	"github.com/gonewx/legwork/pkg/types"
)

// pole 偏移系数（乘以角色尺度 scale = |head - hips|）
const (
	handPoleSide    = 1.0
	handPoleBack    = 1.0
	handPoleUp      = 0.5
	footPoleSide    = 0.25
	footPoleForward = 1.5
	footPoleUp      = 0.9
)

// 两只脚的相位差
const (
	leftFootPhaseShift  = 0.0
	rightFootPhaseShift = 0.5
)

// EndpointSet 一次激活创建的末端集合
type EndpointSet struct {
	// Generation 集合代号，每次 Build 生成新值
	Generation uuid.UUID
	// IDs 肢体 → 末端实体
	IDs map[types.Limb]ecs.EntityID

	// RestOffset 构建时 head - hips 的世界空间偏移
	RestOffset mgl64.Vec3
	// Scale 角色尺度 |head - hips|
	Scale float64
	// FootDistance 构建时两脚之间的距离
	FootDistance float64
}

// RigBuilderSystem 负责末端集合的创建与销毁
type RigBuilderSystem struct {
	entityManager *ecs.EntityManager
	solver        solver.Solver
	current       *EndpointSet
}

// NewRigBuilderSystem 创建末端构建系统
func NewRigBuilderSystem(em *ecs.EntityManager, s solver.Solver) *RigBuilderSystem {
	return &RigBuilderSystem{
		entityManager: em,
		solver:        s,
	}
}

// Current 返回当前末端集合，未激活时为 nil
func (s *RigBuilderSystem) Current() *EndpointSet {
	return s.current
}

// EndpointCount 返回当前存在的末端实体数量
func (s *RigBuilderSystem) EndpointCount() int {
	return len(ecs.GetEntitiesWith1[*components.EndpointComponent](s.entityManager))
}

// Build 根据骨骼创建五个末端并注册到求解器
//
// 总是先销毁旧的集合。骨骼无效（非人形）时不创建任何东西，返回 false，不报错；
// 调用方可以在骨骼有效后重试。
//
// 参数:
//   - skel: 骨骼适配器
//   - cfg: 配置（链长度、回弹强度）
//
// 返回:
//   - *EndpointSet: 新的末端集合
//   - bool: 是否构建成功
func (s *RigBuilderSystem) Build(skel skeleton.Skeleton, cfg *config.RigConfig) (*EndpointSet, bool) {
	s.Teardown()

	if skel == nil || !skel.IsHumanoid() {
		log.Printf("[RigBuilderSystem] Skeleton is not a valid humanoid, skipping build")
		return nil, false
	}

	bone := func(role skeleton.BoneRole) types.Pose {
		pose, _ := skel.Bone(role)
		return pose
	}
	head := bone(skeleton.BoneHead)
	hips := bone(skeleton.BoneHips)
	leftFoot := bone(skeleton.BoneLeftFoot)
	rightFoot := bone(skeleton.BoneRightFoot)

	root := skel.Root()
	right, forward, up := root.Right(), root.Forward(), root.Up()

	restOffset := head.Position.Sub(hips.Position)
	scale := restOffset.Len()

	set := &EndpointSet{
		Generation:   uuid.New(),
		IDs:          make(map[types.Limb]ecs.EntityID, len(types.AllLimbs)),
		RestOffset:   restOffset,
		Scale:        scale,
		FootDistance: leftFoot.Position.Sub(rightFoot.Position).Len(),
	}
	s.current = set

	for _, limb := range types.AllLimbs {
		ep := &components.EndpointComponent{
			Limb:       limb,
			Generation: set.Generation,
		}

		switch limb {
		case types.LimbLeftHand, types.LimbRightHand:
			handRole, shoulderRole := skeleton.BoneLeftHand, skeleton.BoneLeftShoulder
			if limb == types.LimbRightHand {
				handRole, shoulderRole = skeleton.BoneRightHand, skeleton.BoneRightShoulder
			}
			ep.Target = bone(handRole)
			pole := head.Position.
				Add(right.Mul(limb.Side() * handPoleSide * scale)).
				Sub(forward.Mul(handPoleBack * scale)).
				Add(up.Mul(handPoleUp * scale))
			s.attachPole(ep, skeleton.BoneHead, head, pole)

			ep.ChainLength = cfg.Chains.Hand
			if _, hasShoulder := skel.Bone(shoulderRole); hasShoulder {
				ep.ChainLength = cfg.Chains.Shoulder
			}

		case types.LimbLeftFoot, types.LimbRightFoot:
			footRole, upperLegRole := skeleton.BoneLeftFoot, skeleton.BoneLeftUpperLeg
			if limb == types.LimbRightFoot {
				footRole, upperLegRole = skeleton.BoneRightFoot, skeleton.BoneRightUpperLeg
			}
			ep.Target = bone(footRole)
			pole := bone(upperLegRole).Position.
				Add(right.Mul(limb.Side() * footPoleSide * scale)).
				Add(forward.Mul(footPoleForward * scale)).
				Add(up.Mul(footPoleUp * scale))
			s.attachPole(ep, skeleton.BoneHips, hips, pole)
			ep.ChainLength = config.FootChainLength

		case types.LimbHead:
			ep.Target = head
		}

		id := s.entityManager.CreateEntity()
		s.entityManager.AddComponent(id, ep)
		set.IDs[limb] = id

		if limb.IsFoot() {
			s.addFootState(id, limb, ep.Target.Position)
		}

		if limb == types.LimbHead {
			continue
		}

		err := s.solver.Bind(id, solver.Binding{
			Limb:             limb,
			Target:           ep.Target,
			Pole:             ep.Pole,
			ChainLength:      ep.ChainLength,
			SnapBackStrength: cfg.SnapBackStrength,
		})
		if err != nil {
			log.Printf("[RigBuilderSystem] Failed to bind %s: %v, rolling back", limb, err)
			s.Teardown()
			return nil, false
		}
		ep.Bound = true
	}

	log.Printf("[RigBuilderSystem] Built endpoint set %s (scale=%.3f, footDistance=%.3f)",
		set.Generation, set.Scale, set.FootDistance)
	return set, true
}

// attachPole 记录 pole 的父骨骼和父空间局部位置
func (s *RigBuilderSystem) attachPole(ep *components.EndpointComponent, parent skeleton.BoneRole, parentPose types.Pose, pole mgl64.Vec3) {
	ep.HasPole = true
	ep.PoleParent = parent
	ep.PoleLocal = parentPose.InverseTransformPoint(pole)
	ep.Pole = pole
}

// addFootState 为脚部末端挂上步态状态（相位振荡器 + 反应式落脚）
func (s *RigBuilderSystem) addFootState(id ecs.EntityID, limb types.Limb, footPos mgl64.Vec3) {
	shift := leftFootPhaseShift
	if limb == types.LimbRightFoot {
		shift = rightFootPhaseShift
	}
	s.entityManager.AddComponent(id, &components.GaitPhaseComponent{
		Phase:      components.GaitApex,
		PhaseShift: shift,
	})
	s.entityManager.AddComponent(id, &components.FootPlacementComponent{
		Mode:          components.FootIdle,
		Source:        footPos,
		Target:        footPos,
		Current:       footPos,
		PendingSettle: true,
	})
}

// RefreshPoles 根据父骨骼当前位姿重新计算所有 pole 的世界坐标
func (s *RigBuilderSystem) RefreshPoles(skel skeleton.Skeleton) {
	for _, id := range ecs.GetEntitiesWith1[*components.EndpointComponent](s.entityManager) {
		ep, ok := ecs.GetComponent[*components.EndpointComponent](s.entityManager, id)
		if !ok || !ep.HasPole {
			continue
		}
		parent, ok := skel.Bone(ep.PoleParent)
		if !ok {
			continue
		}
		ep.Pole = parent.TransformPoint(ep.PoleLocal)
	}
}

// Teardown 注销并销毁所有末端
// 空集合或部分构建的集合都可以安全调用
func (s *RigBuilderSystem) Teardown() {
	ids := ecs.GetEntitiesWith1[*components.EndpointComponent](s.entityManager)
	for _, id := range ids {
		if ep, ok := ecs.GetComponent[*components.EndpointComponent](s.entityManager, id); ok && ep.Bound {
			s.solver.Unbind(id)
			ep.Bound = false
		}
		s.entityManager.DestroyEntityImmediate(id)
	}

	if s.current != nil {
		log.Printf("[RigBuilderSystem] Tore down endpoint set %s (%d endpoints)", s.current.Generation, len(ids))
	}
	s.current = nil
}
