package systems

import (
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/components"
	"github.com/gonewx/legwork/pkg/config"
	"github.com/gonewx/legwork/pkg/ecs"
	"github.com/gonewx/legwork/pkg/solver"
	"github.com/gonewx/legwork/pkg/types"
	"github.com/gonewx/legwork/pkg/utils"
)

// FootPlacementSystem 反应式落脚
//
// 每只脚一个三状态机：Idle → Moving → Timeout → Idle。
//
//   - Idle：首次落位、求解器报告够不到、或脚偏离静止落点超过 maxStepDistance 时迈步
//   - Moving：在地面上从起点插值到终点，同时按抬脚曲线抬高
//   - Timeout：落地后保持不动 timeoutTime 秒
//
// 两只脚不会同时处于 Moving：一只脚迈步时另一只脚不会离开 Idle。
// 右脚在左脚迈步期间不完成迈步的旧规则仍然保留，作为起步限制之外的兜底；
// 正常运行时只有外部直接改写状态才会走到这个分支。
type FootPlacementSystem struct {
	entityManager *ecs.EntityManager
	solver        solver.Solver
	config        *config.RigConfig
	liftCurve     *utils.Curve
}

// timerEpsilon 计时器比较容差
// 按帧累加 footMoveSpeed·dt 有舍入误差（例如 dt=1/60）
const timerEpsilon = 1e-9

// NewFootPlacementSystem 创建反应式落脚系统
// 抬脚曲线无效时退回默认曲线
func NewFootPlacementSystem(em *ecs.EntityManager, s solver.Solver, cfg *config.RigConfig) *FootPlacementSystem {
	curve, err := cfg.LiftCurve()
	if err != nil {
		log.Printf("[FootPlacementSystem] Warning: invalid height curve (%v), using default", err)
		curve = utils.MustCurve(utils.DefaultLiftKeys)
	}
	return &FootPlacementSystem{
		entityManager: em,
		solver:        s,
		config:        cfg,
		liftCurve:     curve,
	}
}

// RestingPlacement 返回脚的静止落点
//
// 根节点地面位置吸附到 minStepDistance 网格，沿根节点右方向偏移 ±0.5·footDistance，
// 高度取根节点高度，再加上 lead。
//
// 参数:
//   - root: 根节点位姿
//   - side: -1 左脚，+1 右脚
//   - footDistance: 两脚间距
//   - gridStep: 网格间隔（minStepDistance）
//   - lead: 额外的前置位移
func RestingPlacement(root types.Pose, side, footDistance, gridStep float64, lead mgl64.Vec3) mgl64.Vec3 {
	snapped := utils.FromGround(utils.SnapGround(utils.ToGround(root.Position), gridStep), root.Position.Y())
	return snapped.Add(root.Right().Mul(side * 0.5 * footDistance)).Add(lead)
}

// Update 推进两只脚的状态机并写入脚部目标
//
// 参数:
//   - dt: 帧时间（秒）
//   - lead: 本帧根节点位移，作为落点的前置量
//   - root: 根节点位姿
//   - footDistance: 构建时两脚间距
func (s *FootPlacementSystem) Update(dt float64, lead mgl64.Vec3, root types.Pose, footDistance float64) {
	feet := collectFeet(s.entityManager)
	for i, foot := range feet {
		if foot.placement == nil {
			continue
		}
		var other *components.FootPlacementComponent
		if len(feet) == 2 {
			other = feet[1-i].placement
		}
		s.updateFoot(foot, other, i == 0, dt, lead, root, footDistance)
		foot.endpoint.Target.Position = foot.placement.Current
	}
}

func (s *FootPlacementSystem) updateFoot(foot footEntity, other *components.FootPlacementComponent, primary bool,
	dt float64, lead mgl64.Vec3, root types.Pose, footDistance float64) {
	fp := foot.placement
	p := s.config.Placement
	side := foot.endpoint.Limb.Side()
	otherMoving := other != nil && other.Mode == components.FootMoving

	switch fp.Mode {
	case components.FootIdle:
		if otherMoving {
			return
		}
		resting := RestingPlacement(root, side, footDistance, p.MinStepDistance, mgl64.Vec3{})
		trigger := fp.PendingSettle ||
			s.solver.IsOutOfReach(foot.id) ||
			utils.GroundDistanceSqr(resting, fp.Current) > p.MaxStepDistance*p.MaxStepDistance
		if !trigger {
			return
		}
		fp.Source = fp.Current
		fp.Target = RestingPlacement(root, side, footDistance, p.MinStepDistance, lead)
		fp.Mode = components.FootMoving
		fp.Timer = 0
		fp.PendingSettle = false

	case components.FootMoving:
		fp.Timer += p.FootMoveSpeed * dt
		if fp.Timer >= 1-timerEpsilon {
			// 非主脚在主脚迈步期间保持在终点前
			if !primary && otherMoving {
				fp.Timer = 1
				fp.Current = s.swingPosition(fp, root.Position.Y(), 1)
				return
			}
			fp.Target[1] = root.Position.Y()
			fp.Current = fp.Target
			fp.Mode = components.FootTimeout
			fp.Timer = 0
			fp.Steps++
			return
		}
		fp.Current = s.swingPosition(fp, root.Position.Y(), fp.Timer)

	case components.FootTimeout:
		fp.Timer += dt
		if fp.Timer >= p.TimeoutTime-timerEpsilon {
			fp.Mode = components.FootIdle
			fp.Timer = 0
		}
	}
}

// swingPosition 迈步中的脚部位置：地面插值 + 抬脚高度
func (s *FootPlacementSystem) swingPosition(fp *components.FootPlacementComponent, baseHeight, t float64) mgl64.Vec3 {
	from := utils.ToGround(fp.Source)
	to := utils.ToGround(fp.Target)
	ground := mgl64.Vec2{
		utils.Lerp(from.X(), to.X(), t),
		utils.Lerp(from.Y(), to.Y(), t),
	}
	lift := s.liftCurve.Evaluate(t) * s.config.Placement.LiftHeight
	return utils.FromGround(ground, baseHeight+lift)
}

// SnapFeetToRest 把两只脚直接放到零前置的静止落点，状态重置为 Idle
// 用于瞬移后丢弃旧的落脚状态
func SnapFeetToRest(em *ecs.EntityManager, root types.Pose, footDistance, gridStep float64) {
	for _, foot := range collectFeet(em) {
		pos := RestingPlacement(root, foot.endpoint.Limb.Side(), footDistance, gridStep, mgl64.Vec3{})
		if fp := foot.placement; fp != nil {
			fp.Mode = components.FootIdle
			fp.Timer = 0
			fp.PendingSettle = false
			fp.Source, fp.Target, fp.Current = pos, pos, pos
		}
		foot.endpoint.Target.Position = pos
	}
}
