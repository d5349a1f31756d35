package systems

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/components"
	"github.com/gonewx/legwork/pkg/config"
	"github.com/gonewx/legwork/pkg/ecs"
	"github.com/gonewx/legwork/pkg/types"
	"github.com/gonewx/legwork/pkg/utils"
)

// GaitPhaseSystem 相位振荡器步态
//
// 每只脚一个四状态振荡器：Apex → Buildup → Contact → ThruApex → Apex。
// 相位内的 offset 按相位速率推进，offset + phaseShift 达到 1 时切换到下一相位，
// 并把 offset 重置为 -phaseShift。两只脚相差 0.5，触地交替发生。
//
// 当前轨迹点在本相位关键帧和下一相位关键帧之间线性插值，关键帧按水平速度缩放，
// 再映射为抬脚高度和步长，转到速度方向的坐标系中作为脚部目标偏移。
type GaitPhaseSystem struct {
	entityManager *ecs.EntityManager
	config        *config.RigConfig
}

// NewGaitPhaseSystem 创建相位步态系统
func NewGaitPhaseSystem(em *ecs.EntityManager, cfg *config.RigConfig) *GaitPhaseSystem {
	return &GaitPhaseSystem{
		entityManager: em,
		config:        cfg,
	}
}

// AdvancePhase 推进振荡器 dt 秒
//
// 每次调用最多切换一个相位，切换后 offset = -phaseShift，
// 因此 offset 始终位于 [-phaseShift, 1-phaseShift)。
//
// 返回:
//   - bool: 本次是否发生了相位切换
func AdvancePhase(g *components.GaitPhaseComponent, dt float64) bool {
	if dt <= 0 {
		return false
	}
	g.Offset += dt * g.Phase.Rate()
	if g.Offset+g.PhaseShift < 1 {
		return false
	}
	g.Phase = g.Phase.Next()
	g.Offset = -g.PhaseShift
	g.Wraps++
	return true
}

// GaitPoint 返回当前轨迹点 (x=前后, y=高度)
//
// 参数:
//   - g: 振荡器状态
//   - speed: 水平速度（米/秒）
func GaitPoint(g *components.GaitPhaseComponent, speed float64) (x, y float64) {
	x0, y0 := g.Phase.Keyframe()
	x1, y1 := g.Phase.Next().Keyframe()
	t := g.Progress()
	return utils.Lerp(x0*speed, x1*speed, t), utils.Lerp(y0*speed, y1*speed, t)
}

// GaitOffset 把轨迹点映射为脚部目标的局部偏移
//
// y 从 [0, loopSize] 映射到 [minStepHeight, maxStepHeight]，
// x 从 [-loopSize, loopSize] 映射到 [minStepLength, maxStepLength]，
// 得到的 (0, height, length) 旋转到速度方向。速度为零时偏移为零。
func GaitOffset(cfg config.GaitConfig, x, y float64, velocity mgl64.Vec3) mgl64.Vec3 {
	heading, moving := utils.HeadingRotation(velocity)
	if !moving {
		return mgl64.Vec3{}
	}
	height := utils.Remap(y, 0, cfg.LoopSize, cfg.MinStepHeight, cfg.MaxStepHeight)
	length := utils.Remap(x, -cfg.LoopSize, cfg.LoopSize, cfg.MinStepLength, cfg.MaxStepLength)
	return heading.Rotate(mgl64.Vec3{0, height, length})
}

// HorizontalSpeed 由本帧髋部位移计算水平速度，dt <= 0 时为 0
func HorizontalSpeed(hipsDelta mgl64.Vec3, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return utils.Horizontal(hipsDelta).Len() / dt
}

// Update 推进两只脚的振荡器并写入脚部目标
//
// 参数:
//   - dt: 帧时间（秒）
//   - hipsDelta: 本帧髋部世界位移
//   - root: 根节点位姿
//   - footDistance: 构建时两脚间距
func (s *GaitPhaseSystem) Update(dt float64, hipsDelta mgl64.Vec3, root types.Pose, footDistance float64) {
	speed := HorizontalSpeed(hipsDelta, dt)
	for _, foot := range collectFeet(s.entityManager) {
		if foot.phase == nil {
			continue
		}
		AdvancePhase(foot.phase, dt)

		x, y := GaitPoint(foot.phase, speed)
		offset := GaitOffset(s.config.Gait, x, y, hipsDelta)
		lateral := root.Right().Mul(foot.endpoint.Limb.Side() * 0.5 * footDistance)

		foot.endpoint.Target.Position = root.Position.Add(lateral).Add(offset)
	}
}
